package suggest

// Entry pairs a lowercase title fragment with its remediation text.
type Entry struct {
	Key  string
	Text string
}

// table is searched in order. Earlier entries win.
var table = []Entry{
	// SEO
	{
		Key:  "missing page title",
		Text: "Add a unique, descriptive <title> tag to every page (50–60 characters). Include your main keyword naturally. Example: 'Expert Web Design Services | YourBrand'.",
	},
	{
		Key:  "page title too short",
		Text: "Expand your page title to at least 40 characters. Include your primary keyword and brand name to maximise click-through rates from search results.",
	},
	{
		Key:  "page title too long",
		Text: "Trim your page title to under 60 characters so search engines display it fully. Put the most important keyword first.",
	},
	{
		Key:  "missing meta description",
		Text: "Write a compelling meta description of 120–160 characters for each page. Include a clear value proposition and a call to action — this is what users read before clicking your link in Google.",
	},
	{
		Key:  "meta description too short",
		Text: "Expand your meta description to at least 120 characters. Describe the page value clearly and include relevant keywords naturally.",
	},
	{
		Key:  "meta description too long",
		Text: "Shorten your meta description to under 160 characters to prevent it being cut off in search results, which reduces click-through rates.",
	},
	{
		Key:  "missing h1 tag",
		Text: "Add a single H1 heading that clearly describes your page's main topic or service. This is one of the most important on-page SEO signals. Example: 'Professional Digital Marketing Services'.",
	},
	{
		Key:  "multiple h1 tags",
		Text: "Keep exactly one H1 per page. Merge or demote extra H1s to H2 to maintain a clear content hierarchy that both users and search engines can follow.",
	},
	{
		Key:  "heading hierarchy skips",
		Text: "Use sequential heading levels (H1 → H2 → H3) without skipping. This improves document structure, screen reader navigation, and SEO crawlability.",
	},
	{
		Key:  "missing canonical tag",
		Text: "Add <link rel='canonical' href='YOUR-URL'> to prevent duplicate content penalties. This tells Google which version of the page to index when multiple URLs serve the same content.",
	},
	{
		Key:  "incomplete open graph",
		Text: "Add og:title, og:description, and og:image meta tags. When your page is shared on LinkedIn, Facebook, or WhatsApp, these control the preview — a compelling image and description dramatically increases shares and clicks.",
	},
	{
		Key:  "page set to noindex",
		Text: "Remove the 'noindex' directive unless you intentionally want this page hidden from search engines. If this is your main content page, removing noindex could significantly increase organic traffic.",
	},
	{
		Key:  "missing lang attribute",
		Text: "Add a lang attribute to your <html> tag (e.g., <html lang='en'>). This helps screen readers use the correct pronunciation and assists multilingual SEO.",
	},
	// Accessibility and code quality
	{
		Key:  "image(s) missing alt text",
		Text: "Add descriptive alt text to every meaningful image. Alt text helps visually impaired users understand your content and gives search engines additional keyword context. Example: alt='Team of web developers working in a modern office'.",
	},
	{
		Key:  "missing viewport meta tag",
		Text: "Add <meta name='viewport' content='width=device-width, initial-scale=1'> to your <head>. Without it, your site will appear zoomed-out and unusable on mobile devices — which now account for over 60% of web traffic.",
	},
	{
		Key:  "missing charset declaration",
		Text: "Add <meta charset='UTF-8'> as the first element inside <head>. Without it, special characters (accents, symbols, emojis) may display incorrectly in some browsers.",
	},
	{
		Key:  "link(s) with no destination",
		Text: "Replace placeholder links (#) with real URLs or remove them. Broken navigation confuses users and tells search engines your site is incomplete.",
	},
	{
		Key:  "link(s) with no visible text",
		Text: "Every link must have descriptive anchor text or an image with alt text. Screen readers read link text aloud — 'click here' or empty links are useless for accessibility.",
	},
	{
		Key:  "form input(s) without labels",
		Text: "Associate every form input with a <label> element using matching 'for' and 'id' attributes. Labelled inputs are required for WCAG compliance and make forms easier to use on mobile.",
	},
	{
		Key:  "button(s) with no accessible label",
		Text: "Add descriptive aria-label attributes to icon-only buttons. Example: <button aria-label='Open navigation menu'>☰</button>. Screen reader users cannot otherwise identify the button's purpose.",
	},
	{
		Key:  "deprecated html tags",
		Text: "Replace deprecated tags (<center>, <font>, <marquee>) with modern CSS equivalents. These tags are unsupported in current browsers and signal outdated code to both users and search engines.",
	},
	{
		Key:  "excessive inline styles",
		Text: "Move repeated inline styles to a CSS stylesheet or utility classes. This reduces HTML file size, improves caching, and makes future design updates much faster.",
	},
	// Performance
	{
		Key:  "not served over https",
		Text: "Install an SSL certificate and redirect all HTTP traffic to HTTPS immediately. Google penalises non-HTTPS sites in rankings, and browsers show a 'Not Secure' warning that destroys user trust.",
	},
	{
		Key:  "slow server response time",
		Text: "Investigate your server response time (TTFB). Quick wins include: enabling server-side caching, using a CDN (Cloudflare is free), upgrading your hosting plan, and optimising database queries.",
	},
	{
		Key:  "high server response time",
		Text: "Improve your server response time by enabling caching (Redis/Memcached), using a CDN for static assets, and reviewing slow database queries.",
	},
	{
		Key:  "html document is very large",
		Text: "Reduce your HTML payload by removing unused content, paginating long pages, and moving large data (tables, SVGs) to lazy-loaded components.",
	},
	{
		Key:  "html document is large",
		Text: "Reduce HTML size by removing inline scripts and styles, using external files that browsers can cache between page loads.",
	},
	{
		Key:  "render-blocking script(s)",
		Text: "Add the 'defer' attribute to non-critical <script> tags in <head>. This allows the browser to parse HTML first, significantly improving perceived load speed and Core Web Vitals scores.",
	},
	{
		Key:  "many external stylesheets",
		Text: "Bundle your CSS files using a build tool like Vite, Webpack, or Parcel. Fewer HTTP requests means faster page loads, especially on mobile connections.",
	},
	{
		Key:  "high number of external scripts",
		Text: "Audit your third-party scripts. Every external script adds latency and is a potential point of failure. Remove unused scripts and consider self-hosting critical ones.",
	},
	{
		Key:  "no images use lazy loading",
		Text: "Add loading='lazy' to all <img> tags below the fold. This defers loading off-screen images until the user scrolls to them, significantly improving initial page load time and Largest Contentful Paint (LCP).",
	},
	{
		Key:  "inline css appears unminified",
		Text: "Minify inline <style> blocks using a CSS minifier (e.g., cssnano). Minification removes whitespace and comments to reduce file size without affecting functionality.",
	},
	{
		Key:  "no favicon found",
		Text: "Add a favicon.ico and link it in your <head>. A favicon appears in browser tabs, bookmarks, and mobile home screens — it's a small but visible trust signal for your brand.",
	},
}

// Table returns a copy of the remediation table in lookup order.
func Table() []Entry {
	return append([]Entry(nil), table...)
}
