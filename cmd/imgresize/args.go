package main

import "strings"

// single-dash spellings accepted for compatibility with the older tool
var legacyFlags = map[string]string{
	"-wd": "--width",
	"-hg": "--height",
}

// normalizeArgs rewrites "-wd 400" and "-wd=400" into their long forms, which
// pflag would otherwise read as clusters of one-letter flags.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := legacyFlags[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
		}
		out = append(out, arg)
	}
	return out
}
