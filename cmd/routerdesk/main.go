package main

import "github.com/osadchiy/routerdesk/cmd/routerdesk/cmd"

func main() {
	cmd.Execute()
}
