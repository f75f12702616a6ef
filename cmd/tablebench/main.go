package main

import (
	"flag"
	"fmt"
	"github.com/gosuri/uilive"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/chaincache/internal/hashtable"
	"github.com/skybi/chaincache/internal/random"
	"math/rand/v2"
	"os"
	"time"
)

func main() {
	amount := flag.Int("n", 1_000_000, "amount of keys to insert")
	keyLength := flag.Int("key-length", 16, "length of the generated keys")
	buckets := flag.Int("buckets", 0, "initial bucket count")
	removeRatio := flag.Float64("remove", 0.5, "ratio of keys to remove after inserting")
	seed := flag.Uint64("seed", 1, "seed of the key generator")
	verbose := flag.Bool("v", false, "log every rehash")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Int("amount", *amount).Int("key_length", *keyLength).Msg("generating keys...")
	keys := random.Strings(rand.New(rand.NewPCG(*seed, *seed)), *amount, *keyLength, random.CharsetAlphanumeric)

	writer := uilive.New()
	progress := writer.Newline()
	shape := writer.Newline()
	writer.Start()

	var lastRehash string
	table := hashtable.New[string, int](
		hashtable.WithBuckets(*buckets),
		hashtable.WithLogger(log.Logger),
		hashtable.WithRehashHook(func(from, to int) {
			lastRehash = fmt.Sprintf("%d -> %d", from, to)
		}),
	)

	// Insert every key while rendering the table's growth
	start := time.Now()
	step := max(*amount/100, 1)
	for i, key := range keys {
		table.Emplace(key, i)
		if i%step == 0 || i == len(keys)-1 {
			fmt.Fprintf(progress, "Inserted: %d/%d\n", i+1, len(keys))
			fmt.Fprintf(shape, "Buckets: %d | Load factor: %.3f | Last rehash: %s\n", table.BucketCount(), table.LoadFactor(), lastRehash)
		}
	}
	writer.Stop()
	insertTook := time.Since(start)

	// Look up every key once
	start = time.Now()
	for i, key := range keys {
		if value, ok := table.Get(key); !ok || value != i {
			log.Fatal().Str("key", key).Msg("inserted key could not be found")
		}
	}
	lookupTook := time.Since(start)

	// Remove a share of the keys while iterating
	toRemove := int(float64(len(keys)) * *removeRatio)
	start = time.Now()
	for cursor := table.Begin(); !cursor.IsEnd() && toRemove > 0; {
		cursor = table.RemoveAt(cursor)
		toRemove--
	}
	removeTook := time.Since(start)

	stats := table.Stats()
	log.Info().
		Dur("insert", insertTook).
		Dur("lookup", lookupTook).
		Dur("remove", removeTook).
		Int("entries", stats.Size).
		Int("buckets", stats.Buckets).
		Int("empty_buckets", stats.EmptyBuckets).
		Int("max_chain", stats.MaxChain).
		Float32("load_factor", stats.LoadFactor).
		Int("growths", stats.Growths).
		Msg("benchmark finished")
}
