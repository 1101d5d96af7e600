// The main package for the article-pipeline executable.
package main

import "github.com/galangw/article-pipeline/cmd"

func main() {
	cmd.Execute()
}
