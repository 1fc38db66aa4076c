package main

import "github.com/frahmantamala/sensor-monitoring/cmd"

func main() {
	cmd.Execute()
}
