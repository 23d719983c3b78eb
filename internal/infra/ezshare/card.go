package ezshare

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"net/url"
	"time"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"

	"github.com/go-resty/resty/v2"
)

const maxRedirects = 10

// Card talks to an ez Share Wi-Fi SD card over its built-in web server.
type Card struct {
	HTTP        *resty.Client
	Base        *url.URL
	ListingPath string
	Logger      logging.Logger
}

func New(baseURL, listingPath string, timeout time.Duration, logger logging.Logger) (*Card, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.InvalidConfig, "parse base url", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, appErrors.New(appErrors.InvalidConfig, "parse base url", baseURL, "absolute URL required")
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetLogger(logger)

	return &Card{
		HTTP:        client,
		Base:        base,
		ListingPath: listingPath,
		Logger:      logger,
	}, nil
}

func (c *Card) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return c.Base.ResolveReference(u).String(), nil
}

// List walks the paginated listing. The returned sequence can be ranged over
// once; any failure ends it with a listing error.
func (c *Card) List(ctx context.Context, src domain.Source) iter.Seq2[domain.RemoteFile, error] {
	consumed := false
	return func(yield func(domain.RemoteFile, error) bool) {
		if consumed {
			yield(domain.RemoteFile{}, appErrors.New(appErrors.Listing, "list", src.Name, "listing already consumed"))
			return
		}
		consumed = true

		next, err := c.resolve(c.ListingPath)
		if err != nil {
			yield(domain.RemoteFile{}, appErrors.Wrap(appErrors.Listing, "list", c.ListingPath, err))
			return
		}

		visited := map[string]bool{}
		for {
			visited[next] = true
			page, err := c.fetchPage(ctx, next)
			if err != nil {
				yield(domain.RemoteFile{}, err)
				return
			}
			for _, file := range page.Files {
				if !yield(file, nil) {
					return
				}
			}

			if page.Next == "" {
				c.Logger.Infof("This was the last page")
				return
			}
			resolved, err := c.resolve(page.Next)
			if err != nil {
				yield(domain.RemoteFile{}, appErrors.Wrap(appErrors.Listing, "next page", page.Next, err))
				return
			}
			if visited[resolved] {
				c.Logger.Warnf("Next page %q was already listed, stopping", resolved)
				return
			}
			c.Logger.Infof("There's another page at %q", resolved)
			next = resolved
		}
	}
}

func (c *Card) fetchPage(ctx context.Context, pageURL string) (Page, error) {
	c.Logger.Verbosef("Loading %q", pageURL)
	resp, err := c.HTTP.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return Page{}, appErrors.Wrap(appErrors.Listing, "get", pageURL, err)
	}
	if resp.IsError() {
		return Page{}, appErrors.New(appErrors.Listing, "get", pageURL, "unexpected status "+resp.Status())
	}
	page, err := ParsePage(bytes.NewReader(resp.Body()))
	if err != nil {
		return Page{}, appErrors.Wrap(appErrors.Listing, "parse", pageURL, err)
	}
	return page, nil
}

// FileURL is where the card serves a file: <base>DCIM/<dir>/<name>.
func (c *Card) FileURL(file domain.RemoteFile) string {
	ref := &url.URL{Path: "DCIM/" + file.Dir + "/" + file.Name}
	return c.Base.ResolveReference(ref).String()
}

// Retrieve streams one file from the card into w.
func (c *Card) Retrieve(ctx context.Context, src domain.Source, file domain.RemoteFile, w io.Writer) error {
	fileURL := c.FileURL(file)
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(fileURL)
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("GET %s: unexpected status %s", fileURL, resp.Status())
	}
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("GET %s: %w", fileURL, err)
	}
	return nil
}
