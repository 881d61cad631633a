package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

type CategoryCmd struct {
	Add    CategoryAddCmd    `cmd:"" help:"Add a new category."`
	List   CategoryListCmd   `cmd:"" help:"List categories."`
	Edit   CategoryEditCmd   `cmd:"" help:"Edit a category."`
	Delete CategoryDeleteCmd `cmd:"" help:"Delete a category and all of its events."`
}

type CategoryAddCmd struct {
	Label string `arg:"" help:"Category label."`
	Emoji string `help:"Emoji shown next to the label."`
	Color string `help:"Display color (#RRGGBB)."`
	Order int    `help:"Display order (lower first)." default:"0"`
}

func (c *CategoryAddCmd) Run(ctx *Context) error {
	category := models.Category{
		ID:           uuid.New().String(),
		Label:        strings.TrimSpace(c.Label),
		Emoji:        c.Emoji,
		Color:        c.Color,
		DisplayOrder: c.Order,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	if err := ctx.Store.AddCategory(category); err != nil {
		return err
	}

	fmt.Printf("Added category: %s (%s)\n", category.DisplayName(), category.ID)
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *Context) error {
	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		return err
	}

	if len(categories) == 0 {
		fmt.Println("No categories found.")
		return nil
	}

	service, err := ctx.Predictions()
	if err != nil {
		return err
	}

	for _, category := range categories {
		lastUsed := "never"
		if category.LastUsedAt != nil {
			lastUsed = category.LastUsedAt.In(service.Location()).Format("2006-01-02 15:04")
		}
		fmt.Printf("%-24s %s  %s\n", category.DisplayName(), dimStyle.Render(category.ID), dimStyle.Render("last used "+lastUsed))
	}

	return nil
}

type CategoryEditCmd struct {
	Category string  `arg:"" help:"Category id or label."`
	Label    *string `help:"New label."`
	Emoji    *string `help:"New emoji (empty to clear)."`
	Color    *string `help:"New color (#RRGGBB, empty to clear)."`
	Order    *int    `help:"New display order."`
}

func (c *CategoryEditCmd) Run(ctx *Context) error {
	category, err := storage.ResolveCategory(ctx.Store, c.Category)
	if err != nil {
		return err
	}

	updated := false
	if c.Label != nil {
		category.Label = strings.TrimSpace(*c.Label)
		updated = true
	}
	if c.Emoji != nil {
		category.Emoji = *c.Emoji
		updated = true
	}
	if c.Color != nil {
		category.Color = *c.Color
		updated = true
	}
	if c.Order != nil {
		category.DisplayOrder = *c.Order
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --label, --emoji, --color or --order.")
		return nil
	}

	if err := ctx.Store.UpdateCategory(category); err != nil {
		return err
	}

	fmt.Printf("Updated category: %s\n", category.DisplayName())
	return nil
}

type CategoryDeleteCmd struct {
	Category string `arg:"" help:"Category id or label."`
	Yes      bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *CategoryDeleteCmd) Run(ctx *Context) error {
	category, err := storage.ResolveCategory(ctx.Store, c.Category)
	if err != nil {
		return err
	}

	if !c.Yes {
		var confirmed bool
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s?", category.DisplayName())).
			Description("All of its recorded events will be deleted too.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
		if !confirmed {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}
	if err := tracker.DeleteCategory(category.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted category: %s\n", category.DisplayName())
	return nil
}
