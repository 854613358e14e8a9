package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [flags] <file>",
		Short: "Print the concrete syntax tree of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTree,
	}
	cmd.Flags().String("lang", "", "grammar to use instead of the extension (c|cpp)")
	return cmd
}

func runTree(cmd *cobra.Command, args []string) error {
	path := args[0]
	lang := cst.LanguageForPath(path)
	if cmd.Flags().Changed("lang") {
		name, _ := cmd.Flags().GetString("lang")
		var err error
		if lang, err = cst.ParseLanguage(name); err != nil {
			return fmt.Errorf("--lang: %w", err)
		}
	}
	if lang == cst.LangUnknown {
		return fmt.Errorf("%s: cannot tell the language from the extension, use --lang", path)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return err
	}
	sf := fs.Get(id)

	root, err := cst.Parse(cmd.Context(), lang, sf.Content)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return cst.Dump(cmd.OutOrStdout(), root, sf.Content)
}
