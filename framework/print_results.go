package framework

import (
	"fmt"

	"github.com/fatih/color"
)

// PrintResults writes a human-readable summary of a test run to stdout.
func PrintResults(results Results) {
	executed := len(results.Tests) - len(results.Skips)
	if results.OK() {
		fmt.Println(color.GreenString("All tests passed (%d tests, %d skipped)",
			executed, len(results.Skips)))
		return
	}

	fmt.Println(color.RedString("FAILED TESTS (%d):", len(results.Failures)))
	for _, f := range results.Failures {
		fmt.Println(color.RedString("  * %s", f.TestID))
		for _, err := range f.Errors {
			fmt.Printf("    - %s\n", err)
		}
	}
	fmt.Println()
	fmt.Printf("%d of %d tests failed (%d skipped)\n",
		len(results.Failures), executed, len(results.Skips))
}
