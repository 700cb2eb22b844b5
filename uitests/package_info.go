// Package uitests contains the test suite that the harness executes against a
// web application through a remote WebDriver endpoint: one group of checks per
// configured page, covering page load, accessibility, and visual baselines.
package uitests
