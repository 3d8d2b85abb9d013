// Importer enriches a seed document with performance measures from the
// CMS provider-data API and writes the result back out for cmd/api.
package main

import (
	"context"
	"errors"
	"flag"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"bedside/internal/adapters/cms"
	"bedside/internal/adapters/observability"
	"bedside/internal/app"
	"bedside/internal/domain"
	"bedside/internal/shared"
	"bedside/internal/storage/memory"
)

func main() {
	out := flag.String("out", "seed.json", "path for the enriched seed document")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().
		Str("base", cfg.CMSBase).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	seed, err := memory.LoadSeed(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("seed load failed")
	}

	var client domain.MeasuresClient
	client, err = cms.New(cfg.CMSBase, cfg.CMSKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CMS client")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex // guards seed slices during merge

	for i := range seed.Facilities {
		i := i

		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			id := seed.Facilities[i].ID
			raw, err := client.FacilityMeasures(ctx, id)
			if err != nil {
				if errors.Is(err, cms.ErrNotFound) {
					log.Warn().Str("id", id).Msg("no facility measures")
					return
				}
				log.Warn().Str("id", id).Err(err).Msg("facility import failed")
				return
			}
			if m := app.MapFacilityMeasures(raw); m != nil {
				mu.Lock()
				seed.Facilities[i].Measures = merge(seed.Facilities[i].Measures, m)
				mu.Unlock()
				log.Info().Str("id", id).Int("measures", len(m)).Msg("facility import ok")
			}
		}()
	}

	for i := range seed.Clinicians {
		i := i

		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			npi := seed.Clinicians[i].NPI
			raw, err := client.ClinicianMeasures(ctx, npi)
			if err != nil {
				if errors.Is(err, cms.ErrNotFound) {
					log.Warn().Str("npi", npi).Msg("no clinician measures")
					return
				}
				log.Warn().Str("npi", npi).Err(err).Msg("clinician import failed")
				return
			}
			if m := app.MapClinicianMeasures(raw); m != nil {
				mu.Lock()
				seed.Clinicians[i].Measures = merge(seed.Clinicians[i].Measures, m)
				mu.Unlock()
				log.Info().Str("npi", npi).Int("measures", len(m)).Msg("clinician import ok")
			}
		}()
	}

	wg.Wait()

	if err := memory.WriteSeed(*out, seed); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("write seed failed")
	}
	log.Info().Str("path", *out).Msg("import completed")
}

// merge overlays fetched measures onto existing ones, fetched values win.
func merge(existing, fetched map[string]any) map[string]any {
	if existing == nil {
		return fetched
	}
	for k, v := range fetched {
		existing[k] = v
	}
	return existing
}
