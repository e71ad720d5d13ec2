package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LooWze/LooWzeIA/internal/services"
)

func newIdentifyCommand(a *app) *cobra.Command {
	var frontPath, backPath string

	cmd := &cobra.Command{
		Use:     "identify",
		Short:   "Identify a card from two local photos and print the result as JSON",
		Example: `  cardscan identify --front pikachu-front.jpg --back pikachu-back.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.cfg, a.logger

			front, err := readUpload(frontPath)
			if err != nil {
				return err
			}
			back, err := readUpload(backPath)
			if err != nil {
				return err
			}

			engine, closeEngine, err := newOCREngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			// Faces are still stored so keys in the output resolve, but no
			// database is needed for a one-off run.
			storage, err := services.NewImageStorageService(cfg.Storage.UploadsDir, nil)
			if err != nil {
				return err
			}

			identifier := services.NewCardIdentifier(engine, cfg.OCR.Languages, newCatalog(cfg, logger), storage, logger)
			result, err := identifier.Identify(cmd.Context(), 0, front, back)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&frontPath, "front", "", "Photo of the card front (the text source)")
	cmd.Flags().StringVar(&backPath, "back", "", "Photo of the card back")
	_ = cmd.MarkFlagRequired("front")
	_ = cmd.MarkFlagRequired("back")

	return cmd
}

func readUpload(path string) (services.ImageUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.ImageUpload{}, fmt.Errorf("read image: %w", err)
	}
	return services.ImageUpload{
		Data:        data,
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}, nil
}
