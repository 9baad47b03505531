// Command fairmapf runs fairness-aware multi-agent path finding.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
