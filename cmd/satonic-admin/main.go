package main

import "github.com/satonic/satonic-admin/cmd/satonic-admin/cmd"

func main() {
	cmd.Execute()
}
