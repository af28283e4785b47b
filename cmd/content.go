package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/content"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage question content",
}

var contentImportCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import YAML bundles into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, log, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		files, err := bundleFiles(args)
		if err != nil {
			return err
		}
		repo := st.ContentRepo()
		var bundles, items int
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			bf, err := content.ParseBundle(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := repo.ImportBundle(cmd.Context(), bf); err != nil {
				return err
			}
			log.Debug("imported bundle", zap.String("path", path), zap.String("bundle", bf.Bundle.ID))
			bundles++
			items += len(bf.Items)
		}
		fmt.Printf("Imported %d bundle(s), %d item(s).\n", bundles, items)
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list <subject>",
	Short: "List imported bundles for a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		bundles, err := st.ContentRepo().ListBundles(cmd.Context(), args[0], grade)
		if err != nil {
			return err
		}
		if len(bundles) == 0 {
			fmt.Println("No bundles found.")
			return nil
		}
		fmt.Printf("%-28s  %-10s  %5s  %5s  %s\n", "ID", "Subject", "Grade", "Items", "Title")
		fmt.Println(strings.Repeat(rule, 80))
		for _, b := range bundles {
			fmt.Printf("%-28s  %-10s  %5d  %5d  %s\n", b.ID, b.Subject, b.Grade, b.ItemCount, b.Title)
		}
		return nil
	},
}

// bundleFiles expands directories into the YAML files beneath them.
func bundleFiles(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			ext := filepath.Ext(path)
			if !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func init() {
	contentListCmd.Flags().Int("grade", 0, "Filter by grade (0 = all)")

	contentCmd.AddCommand(contentImportCmd)
	contentCmd.AddCommand(contentListCmd)
}
