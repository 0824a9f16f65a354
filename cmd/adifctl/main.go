package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"example.com/adifmerge/internal/adif"
	"example.com/adifmerge/internal/common"
	"example.com/adifmerge/internal/config"
	"example.com/adifmerge/internal/manifest"
	"example.com/adifmerge/internal/merge"
	"example.com/adifmerge/internal/report"
	"example.com/adifmerge/internal/scan"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "merge":
		mergeCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "manifest":
		manifestCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`adifctl %s (built %s) <command> [options]

Commands:
  merge     [--config <merge.yaml>] [--in <dir>] [--out-dir <dir>] [--done-dir <dir>] [--tolerance <seconds>] [--encoding <utf-8|gb18030>] [--lang <en|zh>] [--chunk-kb <n>] [--pdf <report.pdf>] [--no-archive] [--metrics] [--progress]
  report    --events <dupes.jsonl> [--summary <summary.json>] [--html <report.html>] [--pdf <report.pdf>] [--lang <en|zh>]
  manifest  --inputs <comma-separated> --out <manifest.json> [--qr <digest.png>]
`, version, buildDate)
}

func mergeCmd(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	in := fs.String("in", "", "input directory (overrides config)")
	outDir := fs.String("out-dir", "", "output directory (overrides config)")
	doneDir := fs.String("done-dir", "", "archive directory (overrides config)")
	tolerance := fs.Int("tolerance", 0, "duplicate window in seconds (overrides config)")
	encodingFlag := fs.String("encoding", "", "output encoding (overrides config)")
	langFlag := fs.String("lang", "", "report language (overrides config)")
	chunkKB := fs.Int("chunk-kb", 0, "streaming chunk size in KiB (overrides config)")
	pdfPath := fs.String("pdf", "", "also render the duplicate report as PDF")
	noArchive := fs.Bool("no-archive", false, "do not move processed input files to the done directory")
	metricsFlag := fs.Bool("metrics", false, "print merge throughput metrics")
	progressFlag := fs.Bool("progress", false, "display merge progress updates")
	fs.Parse(args)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Println("load config:", err)
			os.Exit(1)
		}
	}
	if *in != "" {
		cfg.InputDir = *in
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *doneDir != "" {
		cfg.DoneDir = *doneDir
	}
	if *tolerance > 0 {
		cfg.ToleranceSeconds = *tolerance
	}
	if *encodingFlag != "" {
		cfg.OutputEncoding = *encodingFlag
	}
	if *langFlag != "" {
		cfg.Lang = *langFlag
	}
	if *chunkKB > 0 {
		cfg.ChunkSizeKB = *chunkKB
	}

	charset, err := adif.ParseCharset(cfg.OutputEncoding)
	if err != nil {
		fmt.Println("encoding:", err)
		os.Exit(1)
	}
	lang, err := report.ParseLanguage(cfg.Lang)
	if err != nil {
		fmt.Println("lang:", err)
		os.Exit(1)
	}
	tr := report.NewTranslator(lang)

	if _, err := common.AttachRotatingLog(cfg.Logs.Directory, common.LogRotation{
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}); err != nil {
		fmt.Println("setup logging:", err)
		os.Exit(1)
	}

	newFiles, doneFiles, err := scan.Discover(cfg.InputDir, cfg.DoneDir)
	if err != nil {
		fmt.Println("discover inputs:", err)
		os.Exit(1)
	}
	if len(newFiles)+len(doneFiles) == 0 {
		fmt.Printf("No ADIF files found in %s or %s\n", cfg.InputDir, cfg.DoneDir)
		return
	}
	fmt.Printf("Found %d files (%d new, %d archived). Merging...\n",
		len(newFiles)+len(doneFiles), len(newFiles), len(doneFiles))

	// The output directory is regenerated from scratch each run.
	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		fmt.Println("clean output dir:", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Println("create output dir:", err)
		os.Exit(1)
	}

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
	}

	merger := merge.NewMerger(merge.Options{
		Tolerance: time.Duration(cfg.ToleranceSeconds) * time.Second,
		ChunkSize: cfg.ChunkSizeKB * 1024,
	})
	merger.SetMetrics(metrics)

	if metrics != nil {
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}
	for _, path := range append(append([]string{}, newFiles...), doneFiles...) {
		merger.MergeFile(path)
	}
	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}

	idx := merger.Index()
	artifacts := make([]string, 0, len(idx.Groups())+4)
	for _, group := range idx.Groups() {
		path := filepath.Join(cfg.OutputDir, group+".adi")
		recs := idx.Records(group)
		if err := adif.WriteGroupFile(path, recs, charset); err != nil {
			fmt.Println("write group file:", err)
			os.Exit(1)
		}
		fmt.Printf("Generated: %s (%d unique QSOs)\n", filepath.Base(path), len(recs))
		artifacts = append(artifacts, path)
	}

	sum := report.Summary{
		GeneratedAt:     time.Now(),
		Sources:         merger.Sources(),
		Accepted:        idx.Accepted(),
		Duplicates:      idx.Duplicates(),
		MissingCallsign: merger.MissingCallsign(),
	}

	eventsPath := filepath.Join(cfg.OutputDir, "dupes.jsonl")
	if err := merge.WriteEventsJSONL(eventsPath, idx.Events()); err != nil {
		fmt.Println("write events:", err)
		os.Exit(1)
	}
	artifacts = append(artifacts, eventsPath)

	summaryPath := filepath.Join(cfg.OutputDir, "summary.json")
	if err := report.SaveSummaryJSON(sum, summaryPath); err != nil {
		fmt.Println("write summary:", err)
		os.Exit(1)
	}
	artifacts = append(artifacts, summaryPath)

	htmlPath := filepath.Join(cfg.OutputDir, "dupe_report.html")
	if err := report.SaveDupeHTML(htmlPath, sum, idx.Events(), tr); err != nil {
		fmt.Println("write html report:", err)
		os.Exit(1)
	}
	artifacts = append(artifacts, htmlPath)

	if *pdfPath != "" {
		if err := report.SaveDupePDF(*pdfPath, sum, idx.Events(), tr); err != nil {
			fmt.Println("write pdf report:", err)
			os.Exit(1)
		}
		artifacts = append(artifacts, *pdfPath)
	}

	m, err := manifest.Build(artifacts)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := manifest.Save(m, manifestPath); err != nil {
		fmt.Println("manifest save:", err)
		os.Exit(1)
	}
	if digest, err := manifest.Digest(m); err == nil {
		if png, err := report.DigestToQR(digest, 256); err == nil {
			if err := os.WriteFile(filepath.Join(cfg.OutputDir, "manifest_qr.png"), png, 0644); err != nil {
				common.Logf("write manifest qr: %v", err)
			}
		} else {
			common.Logf("render manifest qr: %v", err)
		}
	}

	if !*noArchive && len(newFiles) > 0 {
		stamp := time.Now().Format("20060102_150405")
		moved := scan.Archive(newFiles, cfg.DoneDir, stamp)
		fmt.Printf("Archived %d of %d input files to %s\n", moved, len(newFiles), cfg.DoneDir)
	}

	if len(sum.MissingCallsign) > 0 {
		fmt.Println(strings.Repeat("!", 30))
		fmt.Println("WARNING: records without STATION_CALLSIGN were routed to the UNKNOWN group:")
		for _, source := range sortedSources(sum.MissingCallsign) {
			fmt.Printf(" - %s: %d record(s)\n", source, sum.MissingCallsign[source])
		}
		fmt.Println(strings.Repeat("!", 30))
	}

	fmt.Printf("Unique QSOs=%d, duplicates removed=%d, groups=%d\n",
		idx.Accepted(), idx.Duplicates(), len(idx.Groups()))
	fmt.Println("Report:", htmlPath)

	if metrics != nil && *metricsFlag {
		snap := metrics.Snapshot()
		mbPerSec := snap.ThroughputBytesPerSecond() / 1_000_000
		fmt.Printf("Metrics: duration=%s records=%d duplicates=%d fallbacks=%d processed=%s throughput=%.2f MB/s\n",
			snap.Duration.Round(10*time.Millisecond),
			snap.Records,
			snap.Duplicates,
			snap.Fallbacks,
			common.FormatBytes(snap.Bytes),
			mbPerSec,
		)
	}
}

func sortedSources(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	eventsPath := fs.String("events", "", "dupes.jsonl from a merge run")
	summaryPath := fs.String("summary", "", "summary.json from a merge run")
	htmlPath := fs.String("html", "", "output HTML report")
	pdfPath := fs.String("pdf", "", "output PDF report")
	langFlag := fs.String("lang", "", "report language")
	fs.Parse(args)

	if *eventsPath == "" {
		fmt.Println("required: --events")
		os.Exit(1)
	}
	if *htmlPath == "" && *pdfPath == "" {
		fmt.Println("nothing to do: provide --html and/or --pdf")
		os.Exit(1)
	}

	lang, err := report.ParseLanguage(*langFlag)
	if err != nil {
		fmt.Println("lang:", err)
		os.Exit(1)
	}
	tr := report.NewTranslator(lang)

	events, err := merge.ReadEventsJSONL(*eventsPath)
	if err != nil {
		fmt.Println("load events:", err)
		os.Exit(1)
	}

	var sum report.Summary
	if *summaryPath != "" {
		sum, err = report.LoadSummaryJSON(*summaryPath)
		if err != nil {
			fmt.Println("load summary:", err)
			os.Exit(1)
		}
	} else {
		sum = report.Summary{GeneratedAt: time.Now(), Duplicates: len(events)}
	}

	if *htmlPath != "" {
		if err := report.SaveDupeHTML(*htmlPath, sum, events, tr); err != nil {
			fmt.Println("write html:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote HTML:", *htmlPath)
	}
	if *pdfPath != "" {
		if err := report.SaveDupePDF(*pdfPath, sum, events, tr); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote PDF:", *pdfPath)
	}
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	inputs := fs.String("inputs", "", "comma-separated paths")
	out := fs.String("out", "manifest.json", "output json")
	qrOut := fs.String("qr", "", "output QR PNG of the manifest digest")
	fs.Parse(args)

	if *inputs == "" {
		fmt.Println("required: --inputs")
		os.Exit(1)
	}

	var paths []string
	for _, p := range strings.Split(*inputs, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		fmt.Println("no input paths specified")
		os.Exit(1)
	}

	m, err := manifest.Build(paths)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}
	if err := manifest.Save(m, *out); err != nil {
		fmt.Println("manifest save:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *out)

	if *qrOut != "" {
		digest, err := manifest.Digest(m)
		if err != nil {
			fmt.Println("manifest digest:", err)
			os.Exit(1)
		}
		png, err := report.DigestToQR(digest, 256)
		if err != nil {
			fmt.Println("render qr:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*qrOut, png, 0644); err != nil {
			fmt.Println("write qr:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote QR", *qrOut)
	}
}
