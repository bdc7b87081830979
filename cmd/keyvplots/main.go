// Command keyvplots renders the KeyV area, benchmark and timing summaries
// found in $KEYV_DATA as bar charts next to them.
package main

func main() {
	Execute()
}
