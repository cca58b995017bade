package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagAliases maps alternate spellings to canonical flag names. Aliases
// don't appear in usage output.
var flagAliases = map[string]string{
	"desc":   "description",
	"newest": "newest-first",
}

func init() {
	aliasFlags(addCmd, editCmd, boardCmd)
}

func aliasFlags(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		flags := cmd.Flags()
		normalize := flags.GetNormalizeFunc()
		flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
			if canonical, ok := flagAliases[name]; ok {
				name = canonical
			}
			return normalize(f, name)
		})
	}
}
