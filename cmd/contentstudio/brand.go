package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/contentstudio/internal/brand"
)

func newBrandCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Manage brand voice profiles",
	}
	cmd.AddCommand(newBrandAnalyzeCommand())
	cmd.AddCommand(newBrandShowCommand())
	cmd.AddCommand(newBrandListCommand())
	cmd.AddCommand(newBrandDeleteCommand())
	return cmd
}

func newBrandAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <posts-file>...",
		Short: "Build a brand profile from past posts and store it",
		Long: "Each file holds one or more past posts. Posts inside a file are\n" +
			"separated by a line containing only \"---\".",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")

			posts, err := readPosts(args)
			if err != nil {
				return err
			}

			analyzer := brand.NewAnalyzer(newClient(cfg))
			profile, err := analyzer.AnalyzePosts(cmd.Context(), posts)
			if err != nil {
				return err
			}
			profile.Name = name

			store, err := brand.NewStore(cfg.BrandDBPath())
			if err != nil {
				return fmt.Errorf("open brand store: %w", err)
			}
			defer store.Close()

			if err := store.Save(profile); err != nil {
				return err
			}
			fmt.Printf("Saved profile %q from %d posts\n\n%s\n", profile.Name, len(posts), profile.Summary())
			return nil
		},
	}
	cmd.Flags().String("name", brand.DefaultProfileName, "profile name to store under")
	return cmd
}

func newBrandShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print a stored brand profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name := brand.DefaultProfileName
			if len(args) > 0 {
				name = args[0]
			}

			store, err := brand.NewStore(cfg.BrandDBPath())
			if err != nil {
				return fmt.Errorf("open brand store: %w", err)
			}
			defer store.Close()

			profile, err := store.Load(name)
			if errors.Is(err, brand.ErrNotFound) {
				return fmt.Errorf("no profile named %q, run \"contentstudio brand analyze\" first", name)
			}
			if err != nil {
				return err
			}
			fmt.Println(profile.Summary())
			return nil
		},
	}
}

func newBrandListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored brand profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := brand.NewStore(cfg.BrandDBPath())
			if err != nil {
				return fmt.Errorf("open brand store: %w", err)
			}
			defer store.Close()

			names, err := store.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No brand profiles stored yet.")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newBrandDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored brand profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := brand.NewStore(cfg.BrandDBPath())
			if err != nil {
				return fmt.Errorf("open brand store: %w", err)
			}
			defer store.Close()
			return store.Delete(args[0])
		},
	}
}

// readPosts loads past posts from files, splitting on "---" separator lines.
func readPosts(paths []string) ([]string, error) {
	var posts []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read posts: %w", err)
		}
		for _, chunk := range strings.Split(string(data), "\n---\n") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				posts = append(posts, chunk)
			}
		}
	}
	return posts, nil
}
