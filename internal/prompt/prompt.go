// Package prompt builds the per-stage instructions sent to the generative
// backend. Every builder is a pure function of the selection state and ends
// with a strict output-format directive naming the expected JSON shape, so
// callers can index into the parsed result without guessing.
package prompt

import (
	"fmt"
	"strings"

	"blogsmith/internal/blog"
)

// Envelope markers for the streamed article response. The streaming
// assembler relies on this delimiter pair and nothing else.
const (
	TitleStart   = "[TITLE_START]"
	TitleEnd     = "[TITLE_END]"
	ContentStart = "[CONTENT_START]"
	ContentEnd   = "[CONTENT_END]"
)

// TopicIdeas selects one of three branches by input presence: a freeform
// idea wins over a category, and with neither a generic trend prompt is
// used. Always requests exactly five suggestions.
func TopicIdeas(category, userInput string) string {
	var p string
	switch {
	case userInput != "":
		p = fmt.Sprintf(`사용자가 입력한 다음 키워드/문장을 기반으로, SEO에 최적화된 흥미로운 블로그 글 주제 5개를 추천해줘: %q`, userInput)
		if category != "" {
			p += fmt.Sprintf(` 추천 시 %q 카테고리의 특성을 반드시 고려해줘.`, category)
		}
	case category != "":
		p = fmt.Sprintf(`%q 카테고리에 대해, 최신 트렌드와 독자의 흥미를 고려하여 SEO에 최적화된 블로그 글 주제 5개를 추천해줘.`, category)
	default:
		p = `최신 구글 트렌드, 기술, 경제, 문화 트렌드를 종합적으로 분석하여, 현재 사람들이 가장 관심을 가질 만한 흥미로운 블로그 글 주제 5개를 추천해줘.`
	}
	return p + "\n\n응답은 반드시 {\"topics\": [\"주제1\", \"주제2\", \"주제3\", \"주제4\", \"주제5\"]} 형식의 JSON 객체로만 제공해줘. 다른 설명은 절대 추가하지 마."
}

// Keywords requests exactly ten SEO keywords for the topic.
func Keywords(topic string) string {
	return fmt.Sprintf(`블로그 주제 %q에 대해 검색 엔진 최적화(SEO)에 가장 효과적인 핵심 키워드를 10개 추천해줘. 짧은 키워드와 긴 키워드(롱테일)를 조화롭게 섞어서 제안해줘. 응답은 반드시 {"keywords": ["키워드1", "키워드2", ...]} 형식의 JSON 객체로만 제공해줘. 다른 설명은 절대 추가하지 마.`, topic)
}

// Tags requests exactly ten SEO tags for the topic.
func Tags(topic string) string {
	return fmt.Sprintf(`블로그 주제 %q에 대해 SEO에 도움이 되고 검색 노출에 유리한, 관련성 높은 태그를 10개 추천해줘. 응답은 반드시 {"tags": ["태그1", "태그2", ...]} 형식의 JSON 객체로만 제공해줘. 다른 설명은 절대 추가하지 마.`, topic)
}

// ConvertHTML asks for a bare HTML rendering of GFM markdown.
func ConvertHTML(markdown string) string {
	return "Please convert the following GitHub Flavored Markdown into HTML. Only return the HTML content, with no other explanations or code fences. Do not wrap the output in markdown backticks.\n\nMarkdown:\n" + markdown
}

// ArticleParams collects every optional field that can shape the article
// prompt. Empty fields are omitted from the prompt entirely.
type ArticleParams struct {
	Topic          string
	Keywords       []string
	Tags           []string
	TargetAudience string
	AuthorInsight  string
	Length         blog.LengthClass
	Category       string
}

func lengthInstruction(lc blog.LengthClass) string {
	switch lc {
	case blog.LengthShort:
		return "약 800자 내외의 짧고 간결한 글로 작성해줘."
	case blog.LengthMedium:
		return "약 1200자 내외의 충분한 정보를 담은 글로 작성해줘."
	case blog.LengthLong:
		return "1500자 이상의 깊이 있고 상세한 글로 작성해줘."
	default:
		return ""
	}
}

// Article assembles the full generation instruction: populated optional
// fields, the image-placeholder mandate, the H2/H3+FAQ structure, the
// external-link requirement and the rigid title/content envelope.
func Article(p ArticleParams) string {
	var b strings.Builder
	b.WriteString("You are an expert SEO blog writer.\n")
	b.WriteString("Write a high-quality blog post in Korean, using GitHub Flavored Markdown, based on the following information.\n\n")
	fmt.Fprintf(&b, "**Topic:** %q\n", p.Topic)
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "**Keywords:** %s\n", strings.Join(p.Keywords, ", "))
	}
	if len(p.Tags) > 0 {
		hashed := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			hashed[i] = "#" + t
		}
		fmt.Fprintf(&b, "**Tags:** %s\n", strings.Join(hashed, " "))
	}
	if p.TargetAudience != "" {
		fmt.Fprintf(&b, "**Target Audience:** %s\n", p.TargetAudience)
	}
	if p.AuthorInsight != "" {
		fmt.Fprintf(&b, "**Author's Insight:** Please incorporate this unique perspective: %q\n", p.AuthorInsight)
	}
	if wc := lengthInstruction(p.Length); wc != "" {
		fmt.Fprintf(&b, "**Word Count:** %s\n", wc)
	}
	if p.Category != "" {
		fmt.Fprintf(&b, "**Category:** %q\n", p.Category)
	}
	b.WriteString(`
**Crucial Requirement: Image Placeholders**
- Your response **MUST** include 1-2 image placeholders embedded naturally within the body of the post.
- Use this exact format: ` + "`[IMAGE_PROMPT: A detailed, artistic image generation prompt in English, ALT_TEXT: SEO-optimized alt text in Korean about the image]`" + `
- Example: A section about AI's future might include ` + "`[IMAGE_PROMPT: A futuristic cityscape with holographic data streams and robots interacting with humans, photorealistic style, ALT_TEXT: AI와 인간이 공존하는 미래 도시의 모습]`" + `

The blog post structure should include:
1.  An engaging introduction.
2.  A well-structured body with H2 (##) and H3 (###) headings.
3.  A conclusion that summarizes the key points.
4.  An FAQ section with 2-3 relevant questions and answers, where each question is an H3 (###) heading.
5.  Incorporate 2-3 real, relevant hyperlinks to authoritative external websites in this format: ` + "`[Link Text](https://example.com)`" + `

Important: Your entire response must strictly follow this format, with no extra text, explanations, or markdown code blocks:
`)
	b.WriteString(TitleStart + "The generated blog post title goes here." + TitleEnd + ContentStart + "The full Markdown content of the blog post goes here." + ContentEnd + "\n")
	return b.String()
}

// Repurpose builds the variant-specific derivation prompt. Each kind has
// its own fixed JSON response shape.
func Repurpose(title, content string, kind blog.RepurposeKind) string {
	base := fmt.Sprintf("**원본 블로그 글 제목:** %s\n**원본 콘텐츠 (Markdown):**\n%s", title, content)
	switch kind {
	case blog.RepurposeYoutubeScript:
		return base + "\n\n위 블로그 글을 기반으로, 시청자의 흥미를 끌 수 있는 유튜브 영상 스크립트를 작성해줘. 오프닝, 본문, 아웃트로를 포함하고, 각 장면에 어울리는 시각적 요소(B-roll)이나 자막 아이디어도 함께 제안해줘. 응답은 반드시 {\"script\": \"유튜브 스크립트 내용...\"} 형식의 JSON 객체로만 제공해줘."
	case blog.RepurposeShortsIdeas:
		return base + "\n\n위 블로그 글의 핵심 내용을 바탕으로, 사람들이 공유하고 싶어할 만한 유튜브 숏츠 영상 아이디어 3가지를 제안해줘. 각 아이디어는 (1) 매력적인 제목, (2) 15초 내외의 간략한 스크립트, (3) 추천 음악이나 효과에 대한 제안을 포함해야 해. 응답은 반드시 다음 형식의 JSON 객체로만 제공해줘: {\"ideas\": [{\"title\": \"아이디어1 제목\", \"script\": \"스크립트 내용\", \"suggestion\": \"추천 사항\"}, {\"title\": \"아이디어2 제목\", \"script\": \"스크립트 내용\", \"suggestion\": \"추천 사항\"}, {\"title\": \"아이디어3 제목\", \"script\": \"스크립트 내용\", \"suggestion\": \"추천 사항\"}]}"
	case blog.RepurposeThreadsPosts:
		return base + "\n\n위 블로그 글을 홍보하기 위한 Threads 게시물 3개를 작성해줘. 각 게시물은 글의 핵심 내용을 요약하고, 이모티콘을 사용하며, 독자의 참여를 유도하는 질문이나 CTA를 포함해야 해. 응답은 반드시 다음 형식의 JSON 객체로만 제공해줘: {\"posts\": [\"게시물1 내용\", \"게시물2 내용\", \"게시물3 내용\"]}"
	default:
		return ""
	}
}

// Translate asks for a translation of title and markdown body into lang,
// preserving tone and markdown structure. Response shape is always
// {translatedTitle, translatedContent}.
func Translate(title, content string, lang blog.Language) string {
	return fmt.Sprintf(`다음 블로그 게시물의 제목과 마크다운 콘텐츠를 %s로 번역해줘.
원문의 친근한 톤앤매너, 전문성, 그리고 마크다운 구조(헤더, 링크, 목록 등)를 완벽하게 유지해야 해. 문맥에 맞는 자연스러운 번역이 중요해.
응답은 반드시 {"translatedTitle": "번역된 제목", "translatedContent": "번역된 마크다운 콘텐츠"} 형식의 JSON 객체로만 제공해줘.

**제목:** %s
**콘텐츠 (Markdown):**
%s
`, lang, title, content)
}
