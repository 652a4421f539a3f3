// Command blogsmith drives a full generation run against a running
// proxy: suggest or choose a topic, enrich it, generate the article,
// derive variants and optionally save the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"blogsmith/internal/blog"
	"blogsmith/internal/genclient"
	"blogsmith/internal/pipeline"
	"blogsmith/internal/render"
	"blogsmith/internal/settings"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "proxy base URL")
	settingsPath := flag.String("settings", "", "settings file path (default: user config dir)")
	setGeminiKey := flag.String("set-gemini-key", "", "store the Gemini API key and exit")
	setNotionKey := flag.String("set-notion-key", "", "store the Notion API key and exit")
	setNotionDB := flag.String("set-notion-db", "", "store the Notion database id and exit")

	category := flag.String("category", "", "blog category")
	idea := flag.String("idea", "", "freeform topic idea")
	topic := flag.String("topic", "", "exact topic; skips topic suggestion")
	pick := flag.Int("pick", -1, "index into the suggested topic list")
	audience := flag.String("audience", "", "target audience")
	length := flag.String("length", "", "article length: short, medium or long")
	insight := flag.String("insight", "", "author insight to weave in")
	keywords := flag.String("keywords", "", "comma-separated keywords to select")
	tags := flag.String("tags", "", "comma-separated tags to select")
	repurpose := flag.String("repurpose", "", "comma-separated variants: youtubeScript, shortsIdeas, threadsPosts")
	translate := flag.String("translate", "", "comma-separated target languages")
	save := flag.Bool("save", false, "save the article to Notion")
	outPath := flag.String("out", "", "write the article markdown to this file")
	htmlPath := flag.String("html", "", "write the rendered HTML to this file")
	quiet := flag.Bool("quiet", false, "suppress the streamed article on stderr")
	flag.Parse()

	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("blogsmith: ")

	path := *settingsPath
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			log.Fatalf("settings path: %v", err)
		}
	}
	store := settings.NewStore(path)

	if *setGeminiKey != "" || *setNotionKey != "" || *setNotionDB != "" {
		cfg := store.Load()
		if *setGeminiKey != "" {
			cfg.GeminiAPIKey = *setGeminiKey
		}
		if *setNotionKey != "" {
			cfg.NotionAPIKey = *setNotionKey
		}
		if *setNotionDB != "" {
			cfg.NotionDatabaseID = *setNotionDB
		}
		if err := store.Save(cfg); err != nil {
			log.Fatalf("save settings: %v", err)
		}
		log.Printf("settings saved to %s", path)
		return
	}

	cfg := store.Load()
	client := genclient.New(*server)
	client.GeminiAPIKey = cfg.GeminiAPIKey
	client.NotionAPIKey = cfg.NotionAPIKey
	client.NotionDatabaseID = cfg.NotionDatabaseID

	ctx := context.Background()
	session := pipeline.NewSession(client)
	session.SetCategory(*category)
	session.SetFreeformIdea(*idea)
	session.SetTargetAudience(*audience)
	session.SetAuthorInsight(*insight)
	if *length != "" {
		lc := blog.LengthClass(*length)
		switch lc {
		case blog.LengthShort, blog.LengthMedium, blog.LengthLong:
			session.SetLength(lc)
		default:
			log.Fatalf("unknown length %q", *length)
		}
	}

	chosen := *topic
	if chosen == "" {
		topics, err := session.SuggestTopics(ctx)
		if err != nil {
			log.Fatalf("suggest topics: %v", err)
		}
		for i, t := range topics {
			fmt.Printf("%2d  %s\n", i, t)
		}
		if *pick < 0 {
			// Suggestion-only run; rerun with -pick or -topic to continue.
			return
		}
		if *pick >= len(topics) {
			log.Fatalf("pick %d out of range (have %d topics)", *pick, len(topics))
		}
		chosen = topics[*pick]
	}

	if err := session.ChooseTopic(ctx, chosen); err != nil {
		log.Fatalf("choose topic: %v", err)
	}
	sel := session.Selection()
	log.Printf("topic: %s", sel.Topic)
	log.Printf("suggested keywords: %s", strings.Join(sel.SuggestedKeywords, ", "))
	log.Printf("suggested tags: %s", strings.Join(sel.SuggestedTags, ", "))

	for _, kw := range splitList(*keywords) {
		session.ToggleKeyword(kw)
	}
	for _, tag := range splitList(*tags) {
		session.ToggleTag(tag)
	}

	onChunk := func(chunk string) { fmt.Fprint(os.Stderr, chunk) }
	if *quiet {
		onChunk = nil
	}
	article, err := session.GenerateArticle(ctx, onChunk)
	if err != nil {
		log.Fatalf("generate article: %v", err)
	}
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	log.Printf("article generated: %s", article.Title)

	if *outPath != "" {
		body := "# " + article.Title + "\n\n" + article.MarkdownBody + "\n"
		if err := os.WriteFile(*outPath, []byte(body), 0o644); err != nil {
			log.Fatalf("write markdown: %v", err)
		}
	}
	if *htmlPath != "" {
		renderer := render.New(client.ConvertHTML)
		if err := os.WriteFile(*htmlPath, []byte(renderer.HTML(ctx, article)), 0o644); err != nil {
			log.Fatalf("write html: %v", err)
		}
	}

	for _, kindName := range splitList(*repurpose) {
		kind := blog.RepurposeKind(kindName)
		out, err := session.Repurpose(ctx, kind)
		if err != nil {
			log.Printf("repurpose %s: %v", kindName, err)
			continue
		}
		printRepurposed(out)
	}

	for _, langName := range splitList(*translate) {
		out, err := session.Translate(ctx, blog.Language(langName))
		if err != nil {
			log.Printf("translate %s: %v", langName, err)
			continue
		}
		fmt.Printf("\n== %s ==\n%s\n\n%s\n", langName, out.Title, out.Content)
	}

	if *save {
		pageID, err := session.Save(ctx)
		if err != nil {
			log.Fatalf("save: %v", err)
		}
		log.Printf("saved to Notion, page id %s", pageID)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printRepurposed(out blog.Repurposed) {
	switch out.Kind {
	case blog.RepurposeYoutubeScript:
		fmt.Printf("\n== YouTube script ==\n%s\n", out.Script)
	case blog.RepurposeShortsIdeas:
		fmt.Printf("\n== Shorts ideas ==\n")
		for _, idea := range out.Ideas {
			fmt.Printf("- %s\n  script: %s\n  visual: %s\n", idea.Title, idea.Script, idea.Suggestion)
		}
	case blog.RepurposeThreadsPosts:
		fmt.Printf("\n== Threads posts ==\n")
		for i, post := range out.Posts {
			fmt.Printf("%d. %s\n", i+1, post)
		}
	}
}
