package wxr

import "encoding/xml"

// The WordPress importer matches elements by their prefixed names, so
// the marshaled tags carry the wp/dc/content/excerpt prefixes literally
// and the feed element declares the matching xmlns attributes.

type cdata struct {
	Value string `xml:",cdata"`
}

type feed struct {
	XMLName   xml.Name `xml:"rss"`
	Version   string   `xml:"version,attr"`
	ExcerptNS string   `xml:"xmlns:excerpt,attr"`
	ContentNS string   `xml:"xmlns:content,attr"`
	WfwNS     string   `xml:"xmlns:wfw,attr"`
	DcNS      string   `xml:"xmlns:dc,attr"`
	WpNS      string   `xml:"xmlns:wp,attr"`
	Channel   channel  `xml:"channel"`
}

type channel struct {
	Title       cdata    `xml:"title"`
	Link        cdata    `xml:"link"`
	Description cdata    `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	Language    string   `xml:"language"`
	WXRVersion  string   `xml:"wp:wxr_version"`
	BaseSiteURL cdata    `xml:"wp:base_site_url"`
	BaseBlogURL cdata    `xml:"wp:base_blog_url"`
	Author      author   `xml:"wp:author"`
	Category    category `xml:"wp:category"`
	Generator   cdata    `xml:"generator"`
	Items       []item   `xml:"item"`
}

type author struct {
	ID          int   `xml:"wp:author_id"`
	Login       cdata `xml:"wp:author_login"`
	Email       cdata `xml:"wp:author_email"`
	DisplayName cdata `xml:"wp:author_display_name"`
	FirstName   cdata `xml:"wp:author_first_name"`
	LastName    cdata `xml:"wp:author_last_name"`
}

type category struct {
	TermID   int   `xml:"wp:term_id"`
	Nicename cdata `xml:"wp:category_nicename"`
	Parent   cdata `xml:"wp:category_parent"`
	Name     cdata `xml:"wp:cat_name"`
}

type guid struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",cdata"`
}

type itemCategory struct {
	Domain   string `xml:"domain,attr"`
	Nicename string `xml:"nicename,attr"`
	Value    string `xml:",cdata"`
}

type postmeta struct {
	Key   cdata `xml:"wp:meta_key"`
	Value cdata `xml:"wp:meta_value"`
}

type item struct {
	Title           cdata          `xml:"title"`
	Link            cdata          `xml:"link"`
	PubDate         string         `xml:"pubDate"`
	Creator         cdata          `xml:"dc:creator"`
	GUID            guid           `xml:"guid"`
	Description     cdata          `xml:"description"`
	Content         cdata          `xml:"content:encoded"`
	Excerpt         cdata          `xml:"excerpt:encoded"`
	PostID          int            `xml:"wp:post_id"`
	PostDate        string         `xml:"wp:post_date"`
	PostDateGMT     string         `xml:"wp:post_date_gmt"`
	PostModified    string         `xml:"wp:post_modified"`
	PostModifiedGMT string         `xml:"wp:post_modified_gmt"`
	CommentStatus   string         `xml:"wp:comment_status"`
	PingStatus      string         `xml:"wp:ping_status"`
	PostName        cdata          `xml:"wp:post_name"`
	Status          string         `xml:"wp:status"`
	PostParent      int            `xml:"wp:post_parent"`
	MenuOrder       int            `xml:"wp:menu_order"`
	PostType        string         `xml:"wp:post_type"`
	PostPassword    cdata          `xml:"wp:post_password"`
	IsSticky        int            `xml:"wp:is_sticky"`
	Meta            []postmeta     `xml:"wp:postmeta"`
	Categories      []itemCategory `xml:"category"`
}
