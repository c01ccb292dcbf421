// launchpd is a command-line client for a static-site hosting service.
//
// It validates a folder of static assets, uploads it as a new version of a
// subdomain, and lists or rolls back versions.
//
// Typical usage:
//
//	launchpd deploy ./dist -m "first deploy"
//	launchpd versions my-site
//	launchpd rollback my-site --to 2
package main

import "launchpd/cli/cmd"

func main() {
	cmd.Execute()
}
