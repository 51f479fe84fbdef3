// Command budctl inspects the buddy heap's size classes and replays
// allocation traces against it.
package main

func main() {
	execute()
}
