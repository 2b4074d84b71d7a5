package main

import "github.com/frahmantamala/pix-checkout/cmd"

func main() {
	cmd.Execute()
}
