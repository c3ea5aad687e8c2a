package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"acecheckin/internal/core"
	"acecheckin/internal/records"
)

// seedFile is the YAML layout accepted by --file. Timestamps are expressed
// as offsets from now so fixtures stay fresh.
type seedFile struct {
	Members []seedMember `yaml:"members"`
}

type seedMember struct {
	Name     string        `yaml:"name"`
	Email    string        `yaml:"email"`
	Phone    string        `yaml:"phone"`
	Entries  []seedEntry   `yaml:"entries"`
	Payments []seedPayment `yaml:"payments"`
}

type seedEntry struct {
	Notes    string `yaml:"notes"`
	DaysAgo  int    `yaml:"days_ago"`
	HoursAgo int    `yaml:"hours_ago"`
}

type seedPayment struct {
	Amount  string `yaml:"amount"`
	Notes   string `yaml:"notes"`
	DaysAgo int    `yaml:"days_ago"`
}

type seedStats struct {
	membersCreated  int
	membersExisting int
	entries         int
	payments        int
}

// NewSeedCommand creates the demo-data seeding command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filePath     string
		entryCount   int
		paymentCount int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo members and activity",
		Long: `Seed the check-in database with sample members, entries, and payments.

Without --file a built-in demo dataset is used: five members with
check-ins spread over the past days and alternating weekly payments.
--entries and --payments scale that dataset. Members that already exist
by name are reused; entries and payments are always appended.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, filePath, entryCount, paymentCount)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "YAML file with a custom seed dataset")
	cmd.Flags().IntVar(&entryCount, "entries", 50, "check-ins in the built-in dataset")
	cmd.Flags().IntVar(&paymentCount, "payments", 25, "payments in the built-in dataset")
	cmd.MarkFlagsMutuallyExclusive("file", "entries")
	cmd.MarkFlagsMutuallyExclusive("file", "payments")

	return cmd
}

func runSeed(cmd *cobra.Command, filePath string, entryCount, paymentCount int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data := defaultSeedData(entryCount, paymentCount)
	if filePath != "" {
		data, err = loadSeedFile(filePath)
		if err != nil {
			return err
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := seedStore(cmd.Context(), store, data, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMembers created:  %d\n", stats.membersCreated)
	fmt.Fprintf(out, "Members existing: %d\n", stats.membersExisting)
	fmt.Fprintf(out, "Entries added:    %d\n", stats.entries)
	fmt.Fprintf(out, "Payments added:   %d\n", stats.payments)
	return nil
}

func loadSeedFile(path string) (seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, fmt.Errorf("read seed file: %w", err)
	}

	var data seedFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return seedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	if len(data.Members) == 0 {
		return seedFile{}, fmt.Errorf("seed file %s has no members", path)
	}
	return data, nil
}

// seedStore writes the dataset. Members are matched by name so reruns do
// not duplicate them; activity rows are appended every run.
func seedStore(ctx context.Context, store records.Store, data seedFile, out io.Writer) (seedStats, error) {
	var stats seedStats

	existing, err := store.ListMembers(ctx, 0, -1)
	if err != nil {
		return stats, fmt.Errorf("list existing members: %w", err)
	}
	byName := make(map[string]core.Member, len(existing))
	for _, m := range existing {
		byName[strings.ToUpper(m.Name)] = m
	}

	now := time.Now().UTC()

	for _, sm := range data.Members {
		member, ok := byName[strings.ToUpper(sm.Name)]
		if ok {
			stats.membersExisting++
			fmt.Fprintf(out, "Member already exists: %s (ID: %d)\n", member.Name, member.ID)
		} else {
			member, err = store.CreateMember(ctx, records.CreateMemberParams{
				Name:  sm.Name,
				Email: sm.Email,
				Phone: sm.Phone,
			})
			if err != nil {
				return stats, fmt.Errorf("create member %s: %w", sm.Name, err)
			}
			byName[strings.ToUpper(member.Name)] = member
			stats.membersCreated++
			fmt.Fprintf(out, "Created member: %s (ID: %d)\n", member.Name, member.ID)
		}

		for _, se := range sm.Entries {
			timestamp := now.Add(-time.Duration(se.DaysAgo)*24*time.Hour - time.Duration(se.HoursAgo)*time.Hour)
			if _, err := store.CreateEntry(ctx, records.CreateEntryParams{
				MemberID:  member.ID,
				Notes:     se.Notes,
				Timestamp: timestamp,
			}); err != nil {
				return stats, fmt.Errorf("create entry for %s: %w", member.Name, err)
			}
			stats.entries++
		}

		for _, sp := range sm.Payments {
			amount, err := core.ParseAmount(sp.Amount)
			if err != nil {
				return stats, fmt.Errorf("payment amount %q for %s: %w", sp.Amount, member.Name, err)
			}
			timestamp := now.Add(-time.Duration(sp.DaysAgo) * 24 * time.Hour)
			if _, err := store.CreatePayment(ctx, records.CreatePaymentParams{
				MemberID:  member.ID,
				Amount:    amount,
				Notes:     sp.Notes,
				Timestamp: timestamp,
			}); err != nil {
				return stats, fmt.Errorf("create payment for %s: %w", member.Name, err)
			}
			stats.payments++
		}
	}

	return stats, nil
}

// defaultSeedData mirrors the demo dataset used in development: five
// members sharing entryCount court check-ins and paymentCount
// alternating payments, round-robin.
func defaultSeedData(entryCount, paymentCount int) seedFile {
	members := []seedMember{
		{Name: "Alice Johnson", Email: "alice@example.com", Phone: "+1-555-1001"},
		{Name: "Bob Smith", Email: "bob@example.com", Phone: "+1-555-1002"},
		{Name: "Charlie Brown", Email: "charlie@example.com", Phone: "+1-555-1003"},
		{Name: "Diana Prince", Email: "diana@example.com", Phone: "+1-555-1004"},
		{Name: "Edward Norton", Email: "edward@example.com", Phone: "+1-555-1005"},
	}

	courts := []string{"Court A", "Court B", "Court C", "Court D"}
	for i := 0; i < entryCount; i++ {
		m := &members[i%len(members)]
		m.Entries = append(m.Entries, seedEntry{
			Notes:    fmt.Sprintf("Entry at %s", courts[i%len(courts)]),
			DaysAgo:  i / 5,
			HoursAgo: i % 24,
		})
	}

	for i := 0; i < paymentCount; i++ {
		m := &members[i%len(members)]
		amount := "25.50"
		if i%2 == 1 {
			amount = "50.00"
		}
		notes := "Monthly membership"
		if i%3 == 0 {
			notes = "Court rental fee"
		}
		m.Payments = append(m.Payments, seedPayment{
			Amount:  amount,
			Notes:   notes,
			DaysAgo: i * 7,
		})
	}

	return seedFile{Members: members}
}
