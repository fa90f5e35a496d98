package main

import "github.com/osadchiy/routerdesk/cmd/routerdesk-builder/cmd"

func main() {
	cmd.Execute()
}
