package main

import (
	"github.com/lehigh-university-libraries/orcidator/cmd"
)

func main() {
	cmd.Execute()
}
