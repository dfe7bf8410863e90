package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fidakune/internal/lexicon"
	"fidakune/internal/retrieval"
	"fidakune/internal/search"
	"fidakune/internal/server"
	"fidakune/internal/snapshot"

	"github.com/spf13/cobra"
)

var (
	searchForceRoot bool
	searchLimit     int
	searchDomain    string
	searchPattern   bool
	exploreDepth    int
	exploreFormat   string
	validateSimilar bool
	reviewDomain    string
	reviewPron      string
	jsonOutput      bool
	exportFormat    string
	exportOut       string
)

func init() {
	searchCmd.Flags().BoolVar(&searchForceRoot, "roots", false, "Run root analysis even when exact matches exist")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results per tier (0 = all)")
	searchCmd.Flags().StringVar(&searchDomain, "domain", "", "Only return entries from this domain")
	searchCmd.Flags().BoolVar(&searchPattern, "pattern", false, "Treat the query as a regular expression over words and pronunciations")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw result as JSON")

	exploreCmd.Flags().IntVar(&exploreDepth, "depth", 0, "Maximum hops from the seed (default from config)")
	exploreCmd.Flags().StringVar(&exploreFormat, "format", "text", "Output format: text, json or mermaid")

	validateCmd.Flags().BoolVar(&validateSimilar, "similar", false, "Also report near-homophones")

	reviewCmd.Flags().StringVar(&reviewDomain, "domain", "", "Semantic domain of the proposed word")
	reviewCmd.Flags().StringVar(&reviewPron, "pronunciation", "", "IPA pronunciation (derived when empty)")

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, markdown or graph")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Look up a word or meaning through the exact, root and semantic tiers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if searchPattern {
			return patternSearch(a.engine.Collection(), strings.Join(args, " "), jsonOutput)
		}

		res := a.engine.SearchWithOptions(strings.Join(args, " "), search.Options{
			ForceRootTier: searchForceRoot,
			Limit:         searchLimit,
			Domain:        lexicon.Domain(searchDomain),
		})
		if jsonOutput {
			return printJSON(res)
		}
		if res.Error != "" {
			return fmt.Errorf("%s: %q", res.Error, res.Query)
		}

		fmt.Printf("🔎 %q: %d results (tier: %s, %v)\n", res.Query, res.Total(), res.Tier, res.ProcessingTime)
		printMatches("Exact matches", res.ExactMatches)
		printMatches("Related words", res.RelatedWords)
		printMatches("Semantic matches", res.SemanticMatches)
		return nil
	},
}

func patternSearch(c *lexicon.Collection, expr string, asJSON bool) error {
	found, err := c.FindByPattern(expr)
	if err != nil {
		return err
	}
	if asJSON {
		if found == nil {
			found = []lexicon.Entry{}
		}
		return printJSON(found)
	}

	fmt.Printf("🔎 /%s/: %d words\n", expr, len(found))
	for _, e := range found {
		fmt.Printf("  %-16s %-14s %-10s %s\n", e.Word, e.Pronunciation, e.Domain, e.Definition)
	}
	return nil
}

func printMatches(title string, ms []search.Match) {
	if len(ms) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, m := range ms {
		fmt.Printf("  %-16s %-14s %-10s %.2f  %s\n",
			m.Entry.Word, m.Entry.Pronunciation, m.Entry.Domain, m.Confidence, m.Entry.Definition)
	}
}

var exploreCmd = &cobra.Command{
	Use:   "explore <label>",
	Short: "Walk the relationship graph outward from a word or keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		t := a.explorer.Search(strings.Join(args, " "), exploreDepth)
		switch exploreFormat {
		case "json":
			return printJSON(t)
		case "mermaid":
			fmt.Print(t.Mermaid())
			return nil
		}
		if t.Error != "" {
			return fmt.Errorf("%s: %q", t.Error, t.Query)
		}

		fmt.Printf("🕸️  %q: %d seeds, %d nodes within %d hops\n", t.Query, len(t.SeedIDs), t.Total(), t.MaxDepth)
		printResults("Directly related", t.DirectlyRelated)
		printResults("Component roots", t.ComponentRoots)
		printResults("Related ideas", t.RelatedIdeas)
		return nil
	},
}

func printResults(title string, rs []retrieval.Result) {
	if len(rs) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, r := range rs {
		fmt.Printf("  %-16s depth %d  strength %.2f  via %s\n", r.Node.Label, r.Depth, r.Strength, strings.Join(r.Path, " → "))
	}
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report duplicates, homophones, missing roots and phonotactic problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		coll := a.engine.Collection()
		fmt.Printf("📚 Validating %d entries from %s\n", coll.Len(), a.loaded.Vocabulary.Source)

		opts := lexicon.ValidateOptions{MissingRoots: true}
		if validateSimilar {
			opts.SimilarityThreshold = lexicon.DefaultSimilarityThreshold
		}
		conflicts := lexicon.Validate(coll, opts)
		counts := lexicon.CountByType(conflicts)
		for _, typ := range lexicon.SortedTypes(counts) {
			fmt.Printf("  %-22s %d\n", typ, counts[typ])
		}
		for _, c := range conflicts {
			words := make([]string, len(c.Entries))
			for i, e := range c.Entries {
				words[i] = e.Word
			}
			fmt.Printf("⚠️  %s: %s %s\n", c.Type, strings.Join(words, ", "), c.Detail)
		}

		failures := 0
		for _, e := range coll.Entries() {
			rep := lexicon.CheckPhonotactics(e.Word)
			if rep.Status == lexicon.StatusFail {
				failures++
				fmt.Printf("❌ %s: %s\n", e.Word, strings.Join(rep.Errors, "; "))
			}
		}

		if len(conflicts) == 0 && failures == 0 {
			fmt.Println("✅ No problems found.")
		}
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <word> <definition...>",
	Short: "Check a proposed word against the phonotactics and the existing lexicon",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		draft := lexicon.NewEntry(args[0], strings.Join(args[1:], " "), lexicon.Domain(reviewDomain))
		if reviewPron != "" {
			draft.Pronunciation = reviewPron
		}
		r := lexicon.ReviewProposal(draft, a.engine.Collection())

		fmt.Printf("📝 Review %s for %q %s\n", r.ID, r.Word, draft.Pronunciation)
		for _, c := range r.Checks {
			fmt.Printf("  %-14s %s\n", c.Name, c.Status)
			for _, m := range c.Messages {
				fmt.Printf("      %s\n", m)
			}
		}
		fmt.Printf("Recommendation: %s\n", strings.ToUpper(string(r.Recommendation)))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the loaded vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.engine.Collection().Statistics()
		fmt.Printf("📊 %d entries (%d simple, %d compound), avg %.1f roots per compound\n",
			s.Total, s.Simple, s.Compound, s.AverageCompoundRoots)
		for _, d := range lexicon.KnownDomains() {
			if n := s.Domains[d]; n > 0 {
				fmt.Printf("  %-12s %d\n", d, n)
			}
		}
		if len(s.ProductiveRoots) > 0 {
			fmt.Println("Most productive roots:")
			for _, rc := range s.ProductiveRoots {
				fmt.Printf("  %-12s %d\n", rc.Root, rc.Count)
			}
		}
		g := a.explorer.Graph()
		fmt.Printf("🕸️  Graph: %d nodes, %d edges (%s)\n", g.NodeCount(), g.EdgeCount(), a.loaded.Graph.Source)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Save the currently loaded vocabulary and graph into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.store == nil {
			return fmt.Errorf("no local store available at %q", a.cfg.Sources.StorePath)
		}

		meta := snapshot.Metadata{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Source:      a.loaded.Vocabulary.Source,
		}
		fmt.Printf("💾 Saving %d entries...\n", a.engine.Collection().Len())
		if err := a.store.SaveVocabulary(ctx, snapshot.NewVocabulary(a.engine.Collection(), meta)); err != nil {
			return fmt.Errorf("failed to save vocabulary: %w", err)
		}

		meta.Source = a.loaded.Graph.Source
		fmt.Printf("💾 Saving %d nodes...\n", a.explorer.Graph().NodeCount())
		if err := a.store.SaveGraph(ctx, snapshot.NewGraph(a.explorer.Graph(), meta)); err != nil {
			return fmt.Errorf("failed to save graph: %w", err)
		}

		at, err := a.store.SavedAt(ctx, "vocabulary")
		if err != nil {
			return err
		}
		fmt.Printf("🎉 Import complete at %s. Database: %s\n", at.Format(time.RFC3339), a.cfg.Sources.StorePath)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the loaded vocabulary (or graph) as a snapshot document",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		meta := snapshot.Metadata{GeneratedAt: time.Now().UTC().Format(time.RFC3339), Source: a.loaded.Vocabulary.Source}
		vocab := snapshot.NewVocabulary(a.engine.Collection(), meta)

		var out []byte
		switch exportFormat {
		case "json":
			out, err = snapshot.EncodeVocabulary(vocab)
		case "markdown":
			out = snapshot.RenderMarkdown(vocab)
		case "graph":
			meta.Source = a.loaded.Graph.Source
			out, err = snapshot.EncodeGraph(snapshot.NewGraph(a.explorer.Graph(), meta))
		default:
			return fmt.Errorf("unknown format %q", exportFormat)
		}
		if err != nil {
			return err
		}

		if exportOut == "" {
			_, err = os.Stdout.Write(out)
			return err
		}
		if err := os.WriteFile(exportOut, out, 0o644); err != nil {
			return err
		}
		fmt.Printf("✅ Wrote %s (%d bytes)\n", exportOut, len(out))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and explore API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.cfg, a.engine, a.explorer, a.logger)
		srv.Setup()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		serverErrChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				serverErrChan <- err
			}
		}()
		fmt.Printf("🚀 Listening on %s:%d\n", a.cfg.Server.Host, a.cfg.Server.Port)

		select {
		case err := <-serverErrChan:
			return fmt.Errorf("server error: %w", err)
		case sig := <-sigChan:
			fmt.Printf("\nReceived signal: %v\n", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
