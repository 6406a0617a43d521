package main

import "github.com/calder-dev/tidechat/cmd"

func main() {
	cmd.Execute()
}
