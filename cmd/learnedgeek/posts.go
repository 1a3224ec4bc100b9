package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnedgeek/learnedgeek"
	"github.com/learnedgeek/learnedgeek/registry"
	"github.com/learnedgeek/learnedgeek/scaffold"
)

var errProblems = errors.New("registry has problems")

func newPostsCmd() *cobra.Command {
	var registryPath string
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Inspect and edit the post registry",
	}
	cmd.PersistentFlags().StringVar(&registryPath, "registry", "",
		"registry file (default: $LEARNEDGEEK_CONTENT_DIR/$LEARNEDGEEK_REGISTRY_FILE)")

	resolve := func() (string, error) {
		if registryPath != "" {
			return registryPath, nil
		}
		cfg, err := learnedgeek.LoadConfig()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg.ContentDir, cfg.RegistryFile), nil
	}

	cmd.AddCommand(
		newPostsCheckCmd(resolve),
		newPostsSortCmd(resolve),
		newPostsSyncCmd(resolve),
		newPostsNewCmd(resolve),
	)
	return cmd
}

func newPostsCheckCmd(resolve func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report malformed entries, duplicate slugs and missing bodies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolve()
			if err != nil {
				return err
			}
			dir, file := filepath.Split(path)
			if dir == "" {
				dir = "."
			}
			logger := learnedgeek.NewLogger(cmd.ErrOrStderr(), "error", "console")
			problems, err := learnedgeek.CheckContent(learnedgeek.NewFileStore(os.DirFS(dir), file), logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintf(out, "%s: %s\n", p.Slug, p.Reason)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%w: %d found", errProblems, len(problems))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}

func newPostsSortCmd(resolve func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "sort",
		Short: "Rewrite the registry newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolve()
			if err != nil {
				return err
			}
			doc, err := registry.Load(path)
			if err != nil {
				return err
			}
			doc.SortNewestFirst()
			if err := registry.Save(path, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sorted %d posts\n", len(doc.Posts))
			return nil
		},
	}
}

func newPostsSyncCmd(resolve func() (string, error)) *cobra.Command {
	var (
		url     string
		retries int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace the local registry with a remote copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolve()
			if err != nil {
				return err
			}
			doc, err := registry.NewFetcher(retries, timeout).Fetch(cmd.Context(), url)
			if err != nil {
				return err
			}
			if err := registry.Save(path, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d posts from %s\n", len(doc.Posts), url)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "URL of the remote posts.json")
	cmd.Flags().IntVar(&retries, "retries", 3, "retry attempts")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "per-request timeout")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newPostsNewCmd(resolve func() (string, error)) *cobra.Command {
	var (
		category    string
		tags        []string
		date        string
		description string
		image       string
		featured    bool
	)
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Add a registry entry and a Markdown body for a new post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolve()
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args, " "))
			slug := learnedgeek.Slugify(title)
			if slug == "" {
				return fmt.Errorf("title %q has no usable slug", title)
			}
			cat, ok := learnedgeek.ParseCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q (want one of %s)", category, categoryList())
			}
			if date == "" {
				date = time.Now().Format(registry.DateLayout)
			} else if _, err := time.Parse(registry.DateLayout, date); err != nil {
				return fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
			}

			doc, err := registry.Load(path)
			if err != nil {
				return err
			}
			entry := registry.Entry{
				Slug:        slug,
				Title:       title,
				Description: description,
				Category:    string(cat),
				Tags:        learnedgeek.FilterEmpty(tags),
				Date:        date,
				Featured:    featured,
				Image:       image,
			}
			if entry.Tags == nil {
				entry.Tags = []string{}
			}
			if err := doc.Add(entry); err != nil {
				return fmt.Errorf("%s: %w", slug, err)
			}

			bodyPath := filepath.Join(filepath.Dir(path), slug+".md")
			if err := writeBody(bodyPath, scaffold.PostData{
				Slug:        slug,
				Title:       title,
				Description: description,
				Tags:        entry.Tags,
			}); err != nil {
				return err
			}

			doc.SortNewestFirst()
			if err := registry.Save(path, doc); err != nil {
				os.Remove(bodyPath)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", bodyPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "post category")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma-separated tags")
	cmd.Flags().StringVar(&date, "date", "", "publication date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "one-line summary")
	cmd.Flags().StringVar(&image, "image", "", "hero image URL")
	cmd.Flags().BoolVar(&featured, "featured", false, "mark the post as featured")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

// writeBody creates the Markdown file, refusing to overwrite an existing one.
func writeBody(path string, d scaffold.PostData) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create post body: %w", err)
	}
	if err := scaffold.WritePost(f, d); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func categoryList() string {
	names := make([]string, len(learnedgeek.Categories))
	for i, c := range learnedgeek.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
