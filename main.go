package main

import "github.com/sqlplan/sqlplan/cmd"

func main() {
	cmd.Execute()
}
