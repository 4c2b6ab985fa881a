package document

import (
	"sync"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>  Sample page  </title>
  <meta name="description" content="A page used in tests">
  <meta charset="utf-8">
  <link rel="stylesheet" href="/a.css">
  <link rel="Shortcut Icon" href="/favicon.ico">
  <link rel="apple-touch-icon" href="/touch.png">
  <script src="/head.js"></script>
</head>
<body>
  <h1>Hello <span>world</span></h1>
  <p style="color:red">text</p>
  <a href="/x"><img src="/logo.png" alt=""></a>
  <a href="#"></a>
  <script src="/body.js" defer></script>
</body>
</html>`

func TestParseTolerant(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		markup string
	}{
		{"empty", ""},
		{"unclosed tags", "<div><p>unclosed<span>"},
		{"garbage", "<<<>>>&&&<!--"},
		{"fragment", "<title>only a title"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := Parse([]byte(tc.markup))
			if doc == nil {
				t.Fatal("Parse returned nil")
			}
			// The tree builder always synthesizes these elements.
			for _, tag := range []string{"html", "head", "body"} {
				if !doc.Has(tag) {
					t.Errorf("expected synthesized <%s>", tag)
				}
			}
		})
	}
}

func TestParseNoscriptContent(t *testing.T) {
	t.Parallel()

	doc := Parse([]byte(`<html><body><noscript><img src="tr.gif"></noscript>` +
		`<noscript><img src="a.png"><img src="b.png" loading="lazy"><img src="c.png"></noscript></body></html>`))

	if got := doc.Count("img"); got != 4 {
		t.Errorf("expected 4 images inside noscript, got %d", got)
	}
	first, ok := doc.First("img")
	if !ok || first.AttrOr("src", "") != "tr.gif" {
		t.Errorf("expected the first noscript image, got %+v", first)
	}
	if got := len(doc.Within("noscript", "img")); got != 1 {
		t.Errorf("expected 1 image in the first noscript, got %d", got)
	}
}

func TestDocumentQueries(t *testing.T) {
	t.Parallel()

	doc := Parse([]byte(samplePage))

	t.Run("first and text", func(t *testing.T) {
		t.Parallel()
		title, ok := doc.First("title")
		if !ok {
			t.Fatal("expected title")
		}
		if title.Text() != "Sample page" {
			t.Errorf("Text() = %q", title.Text())
		}
		if title.RawText() != "  Sample page  " {
			t.Errorf("RawText() = %q", title.RawText())
		}
		h1, _ := doc.First("h1")
		if h1.Text() != "Hello world" {
			t.Errorf("h1 Text() = %q", h1.Text())
		}
	})

	t.Run("missing element", func(t *testing.T) {
		t.Parallel()
		e, ok := doc.First("h2")
		if ok {
			t.Fatal("did not expect h2")
		}
		if e.Tag() != "" || e.Text() != "" || e.HasAttr("id") {
			t.Error("zero Element should answer empty")
		}
	})

	t.Run("counts", func(t *testing.T) {
		t.Parallel()
		if n := doc.Count("a"); n != 2 {
			t.Errorf("Count(a) = %d", n)
		}
		if n := len(doc.All("script")); n != 2 {
			t.Errorf("All(script) = %d", n)
		}
	})

	t.Run("attributes", func(t *testing.T) {
		t.Parallel()
		meta, ok := doc.FindByAttr("meta", "name", "description")
		if !ok {
			t.Fatal("expected meta description")
		}
		if meta.AttrOr("content", "") != "A page used in tests" {
			t.Errorf("content = %q", meta.AttrOr("content", ""))
		}
		img, _ := doc.First("img")
		alt, present := img.Attr("alt")
		if !present || alt != "" {
			t.Errorf("empty alt should be present, got %q %v", alt, present)
		}
		if n := len(doc.WithAttr("style")); n != 1 {
			t.Errorf("WithAttr(style) = %d", n)
		}
		if n := len(doc.AllByAttr("a", "href", "#")); n != 1 {
			t.Errorf("AllByAttr(a, href, #) = %d", n)
		}
	})

	t.Run("within head", func(t *testing.T) {
		t.Parallel()
		scripts := doc.Within("head", "script")
		if len(scripts) != 1 {
			t.Fatalf("head scripts = %d", len(scripts))
		}
		if scripts[0].AttrOr("src", "") != "/head.js" {
			t.Errorf("src = %q", scripts[0].AttrOr("src", ""))
		}
	})

	t.Run("rel", func(t *testing.T) {
		t.Parallel()
		if n := len(doc.WithRel("link", "stylesheet")); n != 1 {
			t.Errorf("WithRel(stylesheet) = %d", n)
		}
		if n := len(doc.WithRel("link", "icon")); n != 1 {
			t.Errorf("WithRel(icon) = %d", n)
		}
		if n := len(doc.RelContains("link", "icon")); n != 2 {
			t.Errorf("RelContains(icon) = %d", n)
		}
	})

	t.Run("descendants", func(t *testing.T) {
		t.Parallel()
		links := doc.All("a")
		if !links[0].HasDescendant("img") {
			t.Error("first link wraps an image")
		}
		if links[1].HasDescendant("img") {
			t.Error("second link has no image")
		}
	})
}

func TestDocumentConcurrentReaders(t *testing.T) {
	t.Parallel()

	doc := Parse([]byte(samplePage))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if doc.Count("a") != 2 {
					t.Error("unexpected link count")
					return
				}
				_ = doc.WithAttr("style")
				_ = doc.Within("head", "script")
			}
		}()
	}
	wg.Wait()
}
