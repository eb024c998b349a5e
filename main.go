package main

import "github.com/datastax/query-plan-apis/cmd"

func main() {
	cmd.Execute()
}
