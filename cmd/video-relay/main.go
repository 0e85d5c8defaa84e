package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"video-relay-go/internal/analyze"
	"video-relay-go/internal/api"
	"video-relay-go/internal/cache"
	"video-relay-go/internal/config"
	"video-relay-go/internal/crawler"
	"video-relay-go/internal/downloader"
	"video-relay-go/internal/logger"
	"video-relay-go/internal/platform/bilibili"
	"video-relay-go/internal/platform/douyin"
	"video-relay-go/internal/platform/tiktok"
	"video-relay-go/internal/relay"
	"video-relay-go/internal/resolve"
)

func main() {
	configPath := flag.String("config", ".", "path to config file")
	apiMode := flag.Bool("api", false, "start api server")
	apiAddr := flag.String("addr", ":8080", "api server address")
	minimal := flag.Bool("minimal", true, "normalize into the canonical record instead of the raw payload")
	deliver := flag.Bool("deliver", false, "run the delivery pipeline: download media to the data dir, cache the artifact, append history")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.InitFromConfig()

	resolver := resolve.New(resolve.Options{
		Douyin:       douyin.NewClient(),
		TikTok:       tiktok.NewClient(),
		Bilibili:     bilibili.NewClient(),
		EnrichAuthor: config.AppConfig.TikTokEnrichAuthor,
	})
	dl := downloader.NewDownloader(config.AppConfig.DataDir)
	analyzer := analyze.New(dl)
	rel := relay.New(relay.Options{
		Resolver: resolver,
		Sink:     relay.NewFileSink(dl),
		Cache:    cache.NewFromConfig(config.AppConfig),
		Prober:   relay.AnalyzeProber{Analyzer: analyzer},
		History:  relay.StoreHistory{},
	})

	if *apiMode {
		srv := api.NewServer(resolver, analyzer, rel)
		logger.Info("starting api server", "addr", *apiAddr)
		if err := http.ListenAndServe(*apiAddr, srv.Handler()); err != nil {
			logger.Error("api server failed", "err", err)
			os.Exit(1)
		}
		return
	}

	url := flag.Arg(0)
	if url == "" {
		fmt.Println("usage: video-relay [-config dir] [-minimal=false] [-deliver] <url> | video-relay -api [-addr :8080]")
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if *deliver {
		art, err := rel.Deliver(context.Background(), url)
		if err != nil {
			logger.Error("delivery failed", "url", url, "error_kind", crawler.KindOf(err), "err", err)
			os.Exit(1)
		}
		_ = enc.Encode(art)
		return
	}

	res, err := resolver.Resolve(context.Background(), url, *minimal)
	if err != nil {
		logger.Error("resolution failed", "url", url, "error_kind", crawler.KindOf(err), "err", err)
		os.Exit(1)
	}

	if res.Record != nil {
		_ = enc.Encode(res.Record)
	} else {
		_ = enc.Encode(res.Raw)
	}
}
