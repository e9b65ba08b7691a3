// Command vmsim replays memory access traces through the segmentation and
// demand paging engines.
package main

import "github.com/sarchlab/vmsim/vmsim/cmd"

func main() {
	cmd.Execute()
}
