package main

import (
	"context"
	"fmt"

	"github.com/jmylchreest/wallpaperd/internal/client"
)

func init() {
	rootCmd.AddCommand(
		simpleCommand("next", "Show the next image", func(ctx context.Context, c *client.Client) error {
			return c.Next(ctx)
		}),
		simpleCommand("prev", "Show the previous image", func(ctx context.Context, c *client.Client) error {
			return c.Previous(ctx)
		}),
		simpleCommand("stop", "Shut the daemon down", func(ctx context.Context, c *client.Client) error {
			return c.Stop(ctx)
		}),
		simpleCommand("fallback", "Toggle the fallback image", func(ctx context.Context, c *client.Client) error {
			if err := c.ToggleFallback(ctx); err != nil {
				return err
			}
			active, err := c.Fallback(ctx)
			if err != nil {
				return err
			}
			if active {
				fmt.Println("fallback on")
			} else {
				fmt.Println("fallback off")
			}
			return nil
		}),
		simpleCommand("update", "Rescan the image directory", func(ctx context.Context, c *client.Client) error {
			n, err := c.Update(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d images\n", n)
			return nil
		}),
		simpleCommand("commands", "Print the daemon's command summary", func(ctx context.Context, c *client.Client) error {
			text, err := c.Help(ctx)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		}),
	)
}
