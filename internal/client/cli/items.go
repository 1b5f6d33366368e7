package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"stockroom/internal/validation"
	"stockroom/pkg/api"
)

func parseItemID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("item id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id: %s", args[0])
	}
	return id, nil
}

func (c *Cli) printItem(item *api.ItemResponse) {
	c.io.Printf("#%d  %s  (%d)\n", item.ID, item.Title, item.Price)
	if item.Description != "" {
		c.io.Printf("    %s\n", item.Description)
	}
	if item.Owner != nil {
		c.io.Printf("    owner: %s\n", item.Owner.Username)
	}
}

func (c *Cli) list(ctx context.Context) error {
	if err := c.withSession(); err != nil {
		return err
	}

	page, err := c.client.ListItems(ctx, 0, 100)
	if err != nil {
		return err
	}

	if page.Total == 0 {
		c.io.Println("No items")
		return nil
	}

	for i := range page.Items {
		c.printItem(&page.Items[i])
	}
	c.io.Printf("Page %d of %d (%d total)\n", page.Page, page.Pages, page.Total)
	return nil
}

func (c *Cli) mine(ctx context.Context) error {
	if err := c.withSession(); err != nil {
		return err
	}

	items, err := c.client.MyItems(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		c.io.Println("You have no items")
		return nil
	}

	for i := range items {
		c.printItem(&items[i])
	}
	return nil
}

func (c *Cli) get(ctx context.Context, args []string) error {
	id, err := parseItemID(args)
	if err != nil {
		return err
	}
	if err := c.withSession(); err != nil {
		return err
	}

	item, err := c.client.GetItem(ctx, id)
	if err != nil {
		return err
	}

	c.printItem(item)
	return nil
}

func (c *Cli) add(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: add <title> <price> [description]")
	}

	title := args[0]
	if err := validation.ValidateItemTitle(title); err != nil {
		return err
	}

	price, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid price: %s", args[1])
	}
	if err := validation.ValidateItemPrice(price); err != nil {
		return err
	}

	description := strings.Join(args[2:], " ")

	if err := c.withSession(); err != nil {
		return err
	}

	item, err := c.client.CreateItem(ctx, api.ItemCreateRequest{
		Title:       title,
		Description: description,
		Price:       price,
	})
	if err != nil {
		return err
	}

	c.io.Printf("Created item #%d\n", item.ID)
	return nil
}

func (c *Cli) update(ctx context.Context, args []string) error {
	id, err := parseItemID(args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	price := fs.Int64("price", 0, "new price")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	req := api.ItemUpdateRequest{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			req.Title = title
		case "desc":
			req.Description = desc
		case "price":
			req.Price = price
		}
	})
	if req.Title == nil && req.Description == nil && req.Price == nil {
		return fmt.Errorf("nothing to update, pass -title, -desc or -price")
	}

	if err := c.withSession(); err != nil {
		return err
	}

	item, err := c.client.UpdateItem(ctx, id, req)
	if err != nil {
		return err
	}

	c.io.Printf("Updated item #%d\n", item.ID)
	return nil
}

func (c *Cli) delete(ctx context.Context, args []string) error {
	id, err := parseItemID(args)
	if err != nil {
		return err
	}
	if err := c.withSession(); err != nil {
		return err
	}

	if err := c.client.DeleteItem(ctx, id); err != nil {
		return err
	}

	c.io.Printf("Deleted item #%d\n", id)
	return nil
}
