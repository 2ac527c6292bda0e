// Command ubpe-go is a thin demonstration binary over the ubpe package:
// it fits a tokenizer on a JSON array of strings from stdin and reports
// the fit vocabulary, an encoding, or a full encode/decode roundtrip. It
// is not a persistence layer — the core never serializes fitted state,
// so every invocation fits from scratch. Corpus documents are run through
// a splitter.Splitter before alphabet translation, and CLI tunables come
// from config.Load, matching the pipeline SPEC_FULL.md describes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ubpe-go/ubpe"
	"github.com/ubpe-go/ubpe/config"
	"github.com/ubpe-go/ubpe/internal/obslog"
	"github.com/ubpe-go/ubpe/splitter"
)

func die(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func readCorpus() ([]string, error) {
	var corpus []string
	if err := json.NewDecoder(os.Stdin).Decode(&corpus); err != nil {
		return nil, fmt.Errorf("reading corpus JSON from stdin: %w", err)
	}
	return corpus, nil
}

func byteAlphabet() map[byte]ubpe.ID {
	m := make(map[byte]ubpe.ID, 256)
	for i := 0; i < 256; i++ {
		m[byte(i)] = ubpe.ID(i)
	}
	return m
}

// runeSet turns a flag string like " \t\n" into the shape splitter.Config
// wants for its break/stop-token rune sets.
func runeSet(s string) map[rune]struct{} {
	if s == "" {
		return nil
	}
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// splitFlags collects the flags that build a splitter.Splitter, shared
// across the fit, roundtrip and inspect subcommands.
type splitFlags struct {
	breakTokens     string
	stopTokens      string
	regex           string
	leaveSeparators bool
}

func registerSplitFlags(fs *flag.FlagSet) *splitFlags {
	sf := &splitFlags{}
	fs.StringVar(&sf.breakTokens, "break-tokens", " \t\n", "runes that start a new piece (splitter break-token stage)")
	fs.StringVar(&sf.stopTokens, "stop-tokens", "", "runes that end a piece (splitter stop-token stage)")
	fs.StringVar(&sf.regex, "split-regex", "", "regex: each match becomes its own piece (splitter regex stage)")
	fs.BoolVar(&sf.leaveSeparators, "leave-separators", true, "keep break/stop-token separators as their own pieces")
	return sf
}

// build constructs the Splitter and the Mode enabling exactly the stages
// sf configured.
func (sf *splitFlags) build() (*splitter.Splitter, splitter.Mode, error) {
	cfg := splitter.Config{
		BreakTokens:  runeSet(sf.breakTokens),
		StopTokens:   runeSet(sf.stopTokens),
		RegexPattern: sf.regex,
	}
	sp, err := splitter.New(cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("building splitter: %w", err)
	}
	var mode splitter.Mode
	if len(cfg.BreakTokens) > 0 {
		mode |= splitter.ModeBreakTokens
	}
	if len(cfg.StopTokens) > 0 {
		mode |= splitter.ModeStopTokens
	}
	if cfg.RegexPattern != "" {
		mode |= splitter.ModeRegex
	}
	return sp, mode, nil
}

// presegment runs sp over every corpus document, pre-segmenting it into
// its independently tokenized parts (spec §4.9's splitter collaborator),
// and flattens the result into the document list Fit trains on.
func presegment(sp *splitter.Splitter, mode splitter.Mode, leaveSeparators bool, corpus []string) [][]byte {
	docs := make([][]byte, 0, len(corpus))
	for _, text := range corpus {
		if mode == 0 {
			docs = append(docs, []byte(text))
			continue
		}
		for _, p := range sp.Split(text, mode, leaveSeparators) {
			if p.Text == "" {
				continue
			}
			docs = append(docs, []byte(p.Text))
		}
	}
	return docs
}

// observerFor builds the RoundObserver a Fit call reports progress
// through. Noop keeps quiet runs quiet; ZerologObserver is what the CLI
// uses whenever logging is enabled, per cfg.LogLevel.
func observerFor(cfg *config.Config, enable bool) obslog.RoundObserver {
	if !enable {
		return obslog.Noop{}
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	return obslog.NewZerologObserver()
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		die(err)
	}
	return cfg
}

func resolvedNTokens(cfg *config.Config, flagVal int, flagSet bool) int {
	if flagSet || cfg.NTokens == 0 {
		return flagVal
	}
	return cfg.NTokens
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("ubpe-go [fit|roundtrip|inspect]")
		return
	}

	switch os.Args[1] {
	case "fit":
		fs := flag.NewFlagSet("fit", flag.ExitOnError)
		configPath := fs.String("config", "", "path to a ubpe.yaml config file")
		variant := fs.String("variant", "classic", "classic|universal")
		nTokens := fs.Int("n-tokens", 512, "vocabulary size, including the base alphabet")
		sf := registerSplitFlags(fs)
		logEnabled := fs.Bool("log", true, "report fit progress through ZerologObserver")
		_ = fs.Parse(os.Args[2:])

		cfg := loadConfig(*configPath)
		sp, mode, err := sf.build()
		if err != nil {
			die(err)
		}
		obs := observerFor(cfg, *logEnabled)

		corpus, err := readCorpus()
		if err != nil {
			die(err)
		}
		docs := presegment(sp, mode, sf.leaveSeparators, corpus)
		n := resolvedNTokens(cfg, *nTokens, flagSet(fs, "n-tokens"))

		var learned int
		switch *variant {
		case "classic":
			t, err := ubpe.NewClassicWithAlphabet(n, 256, byteAlphabet())
			if err != nil {
				die(err)
			}
			if err := t.Fit(docs, cfg.NCandidates, cfg.RearrangeTokens, obs); err != nil {
				die(err)
			}
			learned = len(t.Vocab().Backward)
		case "universal":
			t, err := ubpe.NewUniversalWithAlphabet(n, 256, byteAlphabet())
			if err != nil {
				die(err)
			}
			if err := t.Fit(docs, cfg.NCandidates, cfg.RearrangeTokens, obs); err != nil {
				die(err)
			}
			learned = len(t.Vocab().Backward)
		default:
			die(fmt.Errorf("unknown variant %q", *variant))
		}
		_ = json.NewEncoder(os.Stdout).Encode(map[string]any{"learned_tokens": learned})

	case "roundtrip":
		fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
		configPath := fs.String("config", "", "path to a ubpe.yaml config file")
		variant := fs.String("variant", "classic", "classic|universal")
		text := fs.String("text", "", "text to encode then decode")
		nTokens := fs.Int("n-tokens", 512, "vocabulary size, including the base alphabet")
		sf := registerSplitFlags(fs)
		logEnabled := fs.Bool("log", true, "report fit progress through ZerologObserver")
		_ = fs.Parse(os.Args[2:])

		cfg := loadConfig(*configPath)
		sp, mode, err := sf.build()
		if err != nil {
			die(err)
		}
		obs := observerFor(cfg, *logEnabled)

		corpus, err := readCorpus()
		if err != nil {
			die(err)
		}
		docs := presegment(sp, mode, sf.leaveSeparators, corpus)
		n := resolvedNTokens(cfg, *nTokens, flagSet(fs, "n-tokens"))
		doc := []byte(*text)

		switch *variant {
		case "classic":
			t, err := ubpe.NewClassicWithAlphabet(n, 256, byteAlphabet())
			if err != nil {
				die(err)
			}
			if err := t.Fit(docs, cfg.NCandidates, cfg.RearrangeTokens, obs); err != nil {
				die(err)
			}
			results, err := t.Encode(doc, cfg.TopN)
			if err != nil {
				die(err)
			}
			printRoundtrip[byte](t, results)
		case "universal":
			t, err := ubpe.NewUniversalWithAlphabet(n, 256, byteAlphabet())
			if err != nil {
				die(err)
			}
			if err := t.Fit(docs, cfg.NCandidates, cfg.RearrangeTokens, obs); err != nil {
				die(err)
			}
			results, err := t.Encode(doc, cfg.TopN)
			if err != nil {
				die(err)
			}
			printRoundtrip[byte](t, results)
		default:
			die(fmt.Errorf("unknown variant %q", *variant))
		}

	case "inspect":
		fs := flag.NewFlagSet("inspect", flag.ExitOnError)
		configPath := fs.String("config", "", "path to a ubpe.yaml config file")
		variant := fs.String("variant", "classic", "classic|universal")
		nTokens := fs.Int("n-tokens", 512, "vocabulary size, including the base alphabet")
		sf := registerSplitFlags(fs)
		logEnabled := fs.Bool("log", false, "report fit progress through ZerologObserver")
		_ = fs.Parse(os.Args[2:])

		cfg := loadConfig(*configPath)
		sp, mode, err := sf.build()
		if err != nil {
			die(err)
		}
		obs := observerFor(cfg, *logEnabled)

		corpus, err := readCorpus()
		if err != nil {
			die(err)
		}
		docs := presegment(sp, mode, sf.leaveSeparators, corpus)
		n := resolvedNTokens(cfg, *nTokens, flagSet(fs, "n-tokens"))

		switch *variant {
		case "classic":
			t, err := ubpe.NewClassicWithAlphabet(n, 256, byteAlphabet())
			if err != nil {
				die(err)
			}
			if err := t.Fit(docs, cfg.NCandidates, cfg.RearrangeTokens, obs); err != nil {
				die(err)
			}
			printVocab(t.Vocab())
		case "universal":
			t, err := ubpe.NewUniversalWithAlphabet(n, 256, byteAlphabet())
			if err != nil {
				die(err)
			}
			if err := t.Fit(docs, cfg.NCandidates, cfg.RearrangeTokens, obs); err != nil {
				die(err)
			}
			printVocab(t.Vocab())
		default:
			die(fmt.Errorf("unknown variant %q", *variant))
		}

	default:
		fmt.Fprintln(os.Stderr, "unimplemented")
		os.Exit(2)
	}
}

// flagSet reports whether name was explicitly passed on the command line,
// so an explicit -n-tokens can override a config file's nTokens.
func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

type decoder[S comparable] interface {
	Decode(ids []ubpe.ID) ([]S, error)
}

func printRoundtrip[S comparable](t decoder[S], results []ubpe.EncodingResult) {
	type entry struct {
		Sequence []ubpe.ID `json:"sequence"`
		Weight   float64   `json:"weight"`
		Decoded  string    `json:"decoded,omitempty"`
	}
	out := make([]entry, len(results))
	for i, r := range results {
		e := entry{Sequence: r.Sequence, Weight: r.Weight}
		if decoded, err := t.Decode(r.Sequence); err == nil {
			if bs, ok := any(decoded).([]byte); ok {
				e.Decoded = string(bs)
			}
		}
		out[i] = e
	}
	_ = json.NewEncoder(os.Stdout).Encode(out)
}

func printVocab[S comparable](v ubpe.Vocab[S]) {
	_ = json.NewEncoder(os.Stdout).Encode(map[string]any{
		"n_tokens":      v.NTokens,
		"alphabet_size": v.AlphabetSize,
		"learned_count": len(v.Backward),
	})
}
