// Command player browses the siren catalog and follows a song's lyrics in
// the terminal.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
