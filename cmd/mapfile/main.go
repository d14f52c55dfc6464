// Command mapfile inspects and rewrites files in the mapfile format.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	mapfile "github.com/mapfile/go"
	"github.com/mapfile/go/document"
	fssource "github.com/mapfile/go/source/fs"
)

func main() {
	app := &cli.App{
		Name:  "mapfile",
		Usage: "inspect and rewrite mapfile documents",
		Commands: []*cli.Command{
			getCommand(),
			setCommand(),
			fmtCommand(),
			jsonCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mapfile:", err)
		os.Exit(1)
	}
}

func loadDocument(c *cli.Context, path string) (*document.Document, error) {
	store := mapfile.NewStore(fssource.New(path))
	return store.Load(c.Context)
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print the value stored under a key",
		ArgsUsage: "FILE KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: mapfile get FILE KEY", 2)
			}
			doc, err := loadDocument(c, c.Args().Get(0))
			if err != nil {
				return err
			}
			key := c.Args().Get(1)
			v, ok := doc.Get(key)
			if !ok {
				return fmt.Errorf("key not found: %s", key)
			}
			if nested, ok := v.(*document.Document); ok {
				data, err := mapfile.Marshal(nested)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}
			s, err := doc.GetString(key)
			if err != nil {
				return err
			}
			fmt.Println(s)
			return nil
		},
	}
}

func setCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "store a scalar value under a key, creating the file if needed",
		ArgsUsage: "FILE KEY VALUE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("usage: mapfile set FILE KEY VALUE", 2)
			}
			path := c.Args().Get(0)
			store := mapfile.NewStore(fssource.New(path))

			doc, err := store.Load(c.Context)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				doc = document.New()
			}
			doc.Set(c.Args().Get(1), c.Args().Get(2))
			return store.Save(c.Context, doc)
		},
	}
}

func fmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "rewrite files into the canonical sorted form",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("usage: mapfile fmt FILE...", 2)
			}
			g, ctx := errgroup.WithContext(c.Context)
			for _, path := range c.Args().Slice() {
				path := path
				g.Go(func() error {
					store := mapfile.NewStore(fssource.New(path))
					doc, err := store.Load(ctx)
					if err != nil {
						return err
					}
					if err := store.Save(ctx, doc); err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					return nil
				})
			}
			return g.Wait()
		},
	}
}

func jsonCommand() *cli.Command {
	return &cli.Command{
		Name:      "json",
		Usage:     "convert a mapfile document to JSON",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: mapfile json FILE", 2)
			}
			doc, err := loadDocument(c, c.Args().Get(0))
			if err != nil {
				return err
			}
			var b strings.Builder
			enc := json.NewEncoder(&b)
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc.Map()); err != nil {
				return err
			}
			fmt.Print(b.String())
			return nil
		},
	}
}
