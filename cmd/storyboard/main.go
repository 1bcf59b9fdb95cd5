package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"reelgen/internal/prompt"
)

func main() {
	var (
		facets  prompt.SharedFacets
		asJSON  bool
		catalog bool
	)
	flag.StringVar(&facets.Persona, "persona", "indonesian_woman_fair", "persona key")
	flag.StringVar(&facets.Background, "background", "studio_white", "background key")
	flag.StringVar(&facets.Niche, "niche", "herbal", "niche key")
	flag.StringVar(&facets.Style, "style", "cinematic", "style preset key")
	flag.StringVar(&facets.Product, "product", "", "product name")
	flag.BoolVar(&asJSON, "json", false, "print the storyboard as JSON")
	flag.BoolVar(&catalog, "catalog", false, "list the facet catalog and exit")
	flag.Parse()

	composer := prompt.NewComposer(nil)
	if catalog {
		printJSON(os.Stdout, composer.Catalog().List())
		return
	}

	board, err := composer.BuildStoryboard(facets)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if asJSON {
		printJSON(os.Stdout, board)
		return
	}
	render(os.Stdout, board)
}

func render(w io.Writer, board prompt.Storyboard) {
	header := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	for _, scene := range board {
		header.Fprintf(w, "Scene %d · %s", scene.Number, scene.Type)
		dim.Fprintf(w, " (%s, %s)\n", scene.Request.DurationHint, scene.Request.AspectRatio)
		fmt.Fprintln(w, scene.Request.Prompt)
		fmt.Fprintln(w)
	}
	color.New(color.FgYellow).Fprint(w, "Negative: ")
	if len(board) > 0 {
		fmt.Fprintln(w, board[0].Request.NegativePrompt)
	}
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
