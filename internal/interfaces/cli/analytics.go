package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Landscape/pkg/client"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// analyticsFlags are shared by every analytics subcommand.
type analyticsFlags struct {
	field        string
	dateRange    string
	assetType    string
	jurisdiction string
	top          int
}

var validDateRanges = map[string]bool{"": true, "week": true, "month": true, "quarter": true, "year": true, "all": true}

func (f *analyticsFlags) validate() error {
	if f.top < 0 {
		return errors.InvalidParam(fmt.Sprintf("--top must be positive, got %d", f.top))
	}
	if !validDateRanges[strings.ToLower(f.dateRange)] {
		return errors.InvalidParam(fmt.Sprintf("invalid --date-range %q (want week, month, quarter, year or all)", f.dateRange))
	}
	return nil
}

func (f *analyticsFlags) filter() client.Filter {
	return client.Filter{
		Field:        f.field,
		DateRange:    strings.ToLower(f.dateRange),
		Type:         f.assetType,
		Jurisdiction: f.jurisdiction,
	}
}

func (f *analyticsFlags) query() client.LandscapeQuery {
	return client.LandscapeQuery{Filter: f.filter(), TopN: f.top}
}

// NewAnalyticsCmd returns the keyip analytics command tree.
func NewAnalyticsCmd() *cobra.Command {
	flags := &analyticsFlags{}

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Query landscape and dashboard analytics",
		Long: `Query classification and convergence analytics from the KeyIP-Landscape API.

Every subcommand accepts the same filter flags:
  --field         technology field such as ai, cloud, 5g or "Robotics"
  --date-range    week, month, quarter, year or all
  --type          asset type such as PATENT or TRADEMARK
  --jurisdiction  filing jurisdiction such as US or EP
  --top           maximum number of ranked rows (server default when 0)`,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.field, "field", "", "technology field filter")
	pf.StringVar(&flags.dateRange, "date-range", "", "filing date window (week, month, quarter, year, all)")
	pf.StringVar(&flags.assetType, "type", "", "asset type filter")
	pf.StringVar(&flags.jurisdiction, "jurisdiction", "", "jurisdiction filter")
	pf.IntVar(&flags.top, "top", 0, "number of ranked rows to return")

	cmd.AddCommand(
		analyticsSubcommand("classifications", "Top technology categories by asset count", flags, classificationsView),
		analyticsSubcommand("convergence", "Category pairs sharing the most assets", flags, convergenceView),
		analyticsSubcommand("competitors", "Assignees ranked by portfolio size", flags, competitorsView),
		analyticsSubcommand("inventors", "Inventors ranked by asset count", flags, inventorsView),
		analyticsSubcommand("innovation", "Filings per year with year-over-year growth", flags, innovationView),
		analyticsSubcommand("lifecycle", "Average lifespan and maturity of the portfolio", flags, lifecycleView),
		analyticsSubcommand("summary", "Dashboard totals for the filtered corpus", flags, summaryView),
		analyticsSubcommand("deadlines", "Patents expiring within the deadline horizon", flags, deadlinesView),
	)
	return cmd
}

type viewFunc func(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error)

func analyticsSubcommand(use, short string, flags *analyticsFlags, fn viewFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()

			v, err := fn(ctx, cliCtx.Client, flags)
			if err != nil {
				return err
			}
			return render(cmd, cliCtx.OutputFormat, v)
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

func classificationsView(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error) {
	res, err := c.Landscape().Classifications(ctx, f.query())
	if err != nil {
		return view{}, err
	}
	v := view{title: "Classification trends", headers: []string{"Category", "Assets", "Description"}, data: res}
	for _, r := range res {
		v.rows = append(v.rows, []string{r.Code, itoa(r.Count), truncate(r.Description, 60)})
	}
	return v, nil
}

func convergenceView(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error) {
	res, err := c.Landscape().Convergence(ctx, f.query())
	if err != nil {
		return view{}, err
	}
	v := view{title: "Technology convergence", headers: []string{"Field 1", "Field 2", "Overlap", "Strength"}, data: res}
	for _, r := range res {
		v.rows = append(v.rows, []string{r.Field1, r.Field2, itoa(r.OverlapCount), itoa(r.Strength)})
	}
	return v, nil
}

func competitorsView(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error) {
	res, err := c.Landscape().Competitors(ctx, f.query())
	if err != nil {
		return view{}, err
	}
	v := view{title: "Competitors", headers: []string{"Assignee", "Assets", "Active", "Growth"}, data: res}
	for _, r := range res {
		v.rows = append(v.rows, []string{truncate(r.Assignee, 40), itoa(r.PatentCount), itoa(r.ActiveCount), growth(r.Growth)})
	}
	return v, nil
}

func inventorsView(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error) {
	res, err := c.Landscape().TopInventors(ctx, f.query())
	if err != nil {
		return view{}, err
	}
	v := view{title: "Top inventors", headers: []string{"Inventor", "Assets"}, data: res}
	for _, r := range res {
		v.rows = append(v.rows, []string{truncate(r.Name, 40), itoa(r.PatentCount)})
	}
	return v, nil
}

func innovationView(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error) {
	res, err := c.Landscape().InnovationTrends(ctx, f.query())
	if err != nil {
		return view{}, err
	}
	v := view{title: "Innovation trends", headers: []string{"Year", "Filings", "Growth"}, data: res}
	for _, r := range res {
		v.rows = append(v.rows, []string{itoa(r.Year), itoa(r.Innovations), growth(r.GrowthRate)})
	}
	return v, nil
}

func lifecycleView(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error) {
	res, err := c.Landscape().Lifecycle(ctx, f.query())
	if err != nil {
		return view{}, err
	}
	v := view{
		title:   "Portfolio lifecycle",
		headers: []string{"Average lifespan (years)", "Active phase (years)", "Maturity rate (%)"},
		data:    res,
		record:  true,
	}
	if res != nil {
		v.rows = [][]string{{
			fmt.Sprintf("%.1f", res.AvgLifespan),
			fmt.Sprintf("%.1f", res.ActivePhase),
			itoa(res.MaturityRate),
		}}
	}
	return v, nil
}

func summaryView(ctx context.Context, c *client.Client, f *analyticsFlags) (view, error) {
	res, err := c.Dashboard().Summary(ctx, f.filter())
	if err != nil {
		return view{}, err
	}
	v := view{
		title:   "Dashboard summary",
		headers: []string{"Total filings", "Active", "Pending", "Expiring soon"},
		data:    res,
		record:  true,
	}
	if res != nil {
		v.rows = [][]string{{itoa(res.TotalFilings), itoa(res.ActivePatents), itoa(res.PendingApplications), itoa(res.ExpiringSoon)}}
	}
	return v, nil
}

func deadlinesView(ctx context.Context, c *client.Client, _ *analyticsFlags) (view, error) {
	res, err := c.Dashboard().UpcomingDeadlines(ctx)
	if err != nil {
		return view{}, err
	}
	v := view{title: "Upcoming deadlines", headers: []string{"ID", "Title", "Deadline", "Type"}, data: res}
	for _, r := range res {
		v.rows = append(v.rows, []string{fmt.Sprint(r.ID), truncate(r.Title, 50), r.Deadline, r.Type})
	}
	return v, nil
}

//Personal.AI order the ending
