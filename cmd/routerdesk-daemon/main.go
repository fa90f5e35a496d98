package main

import "github.com/osadchiy/routerdesk/cmd/routerdesk-daemon/cmd"

func main() {
	cmd.Execute()
}
