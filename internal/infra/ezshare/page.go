package ezshare

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"dcimsync/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// Page is one parsed listing page.
type Page struct {
	Files []domain.RemoteFile
	// Next is the raw href of the next page link, empty on the last page.
	Next string
}

// ParsePage reads a listing page. Every img element references one file
// through its src, e.g.
//
//	thumbnail?fname=DSCF3479.JPG&fdir=103_FUJI&ftype=0&time=1389464558
//
// and the first "div#post a" link, if any, points at the next page.
func ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	var page Page
	var parseErr error
	doc.Find("img").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok {
			parseErr = fmt.Errorf("img %d has no src", i)
			return false
		}
		file, err := ParseReference(src)
		if err != nil {
			parseErr = fmt.Errorf("img %d: %w", i, err)
			return false
		}
		page.Files = append(page.Files, file)
		return true
	})
	if parseErr != nil {
		return Page{}, parseErr
	}

	if href, ok := doc.Find("div#post a").First().Attr("href"); ok {
		page.Next = href
	}
	return page, nil
}

// ParseReference turns an img src into a RemoteFile. fname and fdir are
// required; time must be an integer when present.
func ParseReference(ref string) (domain.RemoteFile, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("reference %q: %w", ref, err)
	}
	q := u.Query()

	file := domain.RemoteFile{
		Name: q.Get("fname"),
		Dir:  q.Get("fdir"),
		Type: q.Get("ftype"),
	}
	if file.Name == "" {
		return domain.RemoteFile{}, fmt.Errorf("reference %q: missing fname", ref)
	}
	if file.Dir == "" {
		return domain.RemoteFile{}, fmt.Errorf("reference %q: missing fdir", ref)
	}
	if raw := q.Get("time"); raw != "" {
		encoded, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.RemoteFile{}, fmt.Errorf("reference %q: malformed time %q", ref, raw)
		}
		file.EncodedTime = &encoded
	}
	return file, nil
}
