/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package main

import "github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/cmd"

func main() {
	cmd.Execute()
}
