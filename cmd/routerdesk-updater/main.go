package main

import "github.com/osadchiy/routerdesk/cmd/routerdesk-updater/cmd"

func main() {
	cmd.Execute()
}
