package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/solushipx/logisynapse/services/match-service/client"
	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/services/match-service/ocr"
	"github.com/solushipx/logisynapse/services/shipment-service/service"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/config"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/identity"
)

func runVariants(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, c := range ocr.Candidates(args[0]) {
		fmt.Fprintln(out, c)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	var resp *matcher.SearchResponse
	if remoteAddr != "" {
		logger.Debug("searching remote match service", zap.String("addr", remoteAddr))
		c, err := client.NewMatchClient(remoteAddr, credential)
		if err != nil {
			return err
		}
		defer c.Close()
		resp, err = c.ManualSearch(ctx, args[0])
		if err != nil {
			return err
		}
	} else {
		caller, err := localCaller()
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		resp, err = matcher.New(s, matcher.Options{}, nil, nil, logger).
			ManualSearch(ctx, caller, matcher.SearchRequest{SearchTerm: args[0]})
		if err != nil {
			return err
		}
	}
	return printSearch(cmd.OutOrStdout(), resp)
}

func printSearch(out io.Writer, resp *matcher.SearchResponse) error {
	if !resp.Success {
		return fmt.Errorf("search failed: %s", resp.Message)
	}
	if len(resp.Matches) == 0 {
		fmt.Fprintln(out, "no matches")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSHIPMENT ID\tCARRIER\tTOTAL\tCONFIDENCE")
	for _, m := range resp.Matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.1f\n",
			m.Shipment.ID, m.Shipment.ShipmentID, m.Shipment.SelectedCarrier, m.Shipment.TotalCharges, m.Confidence)
	}
	return tw.Flush()
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	var docs []contracts.ShipmentDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := service.NewShipmentService(s, nil, logger).ImportShipments(ctx, docs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "imported %d, skipped %d\n", res.Imported, res.Skipped)
	for _, e := range res.Errors {
		fmt.Fprintln(out, "  "+e)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	// store.Open creates the schema for every SQL driver
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
	return nil
}

func runHashKey(cmd *cobra.Command, args []string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	secret := ""
	if len(args) == 1 {
		secret = args[0]
	} else {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("crypto/rand failed: %w", err)
		}
		secret = base64.RawURLEncoding.EncodeToString(buf)
	}

	hash, err := identity.HashSecret(secret, nil)
	if err != nil {
		return err
	}
	entry := map[string][]identity.APIKey{
		"keys": {{ID: keyID, UserID: uid, CompanyID: companyID, Role: keyRole, Hash: hash}},
	}
	b, err := yaml.Marshal(entry)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintf(out, "# credential (shown once): %s.%s\n", keyID, secret)
	}
	_, err = out.Write(b)
	return err
}

// openStore opens the configured store with the --driver and --sqlite overrides.
func openStore() (store.ShipmentStore, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if driver != "" {
		cfg.STORE_DRIVER = driver
	}
	if sqlitePath != "" {
		cfg.SQLITE_PATH = sqlitePath
	}
	ctx, cancel := commandContext()
	defer cancel()
	logger.Debug("opening store", zap.String("driver", cfg.STORE_DRIVER))
	return store.Open(ctx, cfg)
}

func localCaller() (*identity.Identity, error) {
	id := uuid.New()
	if userID != "" {
		var err error
		if id, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("invalid --user: %w", err)
		}
	}
	return &identity.Identity{UserID: id, CompanyID: companyID, Role: identity.RoleOperator}, nil
}
