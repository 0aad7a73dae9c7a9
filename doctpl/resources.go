package doctpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/fetch"
)

// resources caches fetched bytes and font registrations for one render or
// one batch. Failures are cached too so a dead URL is tried once.
type resources struct {
	data     map[string][]byte
	errs     map[string]error
	fonts    []fetch.CustomFont
	listed   bool
	surfaces map[any]map[string]bool // families registered per surface
}

func newResources() *resources {
	return &resources{
		data:     make(map[string][]byte),
		errs:     make(map[string]error),
		surfaces: make(map[any]map[string]bool),
	}
}

func (res *resources) fetch(ctx context.Context, f fetch.Fetcher, url string) ([]byte, error) {
	if data, ok := res.data[url]; ok {
		return data, nil
	}
	if err, ok := res.errs[url]; ok {
		return nil, err
	}
	data, err := f.Fetch(ctx, url)
	if err != nil {
		res.errs[url] = err
		return nil, err
	}
	res.data[url] = data
	return data, nil
}

// registerFonts loads every custom font the pages or presets refer to.
// A font that cannot be loaded is logged; its text falls back to the
// default family.
func (r *run) registerFonts(pages []Page) {
	wanted := r.customFamilies(pages)
	if len(wanted) == 0 {
		return
	}
	done := r.res.surfaces[r.s]
	if done == nil {
		done = make(map[string]bool)
		r.res.surfaces[r.s] = done
	}
	for _, family := range wanted {
		if done[family] {
			continue
		}
		done[family] = true
		if err := certgen.Wrap("font", r.registerFont(family)); err != nil {
			r.log.Warn("custom font unavailable, using default", "family", family, "err", err)
		}
	}
}

func (r *run) customFamilies(pages []Page) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(family string) {
		family = strings.ToLower(strings.TrimSpace(family))
		if strings.HasPrefix(family, fetch.CustomFontPrefix) && !seen[family] {
			seen[family] = true
			out = append(out, family)
		}
	}
	for _, p := range r.t.Fonts {
		add(p.Family)
	}
	for _, p := range pages {
		for _, el := range p.Elements {
			if el.Type == TypeText {
				add(el.FontFamily)
			}
		}
	}
	return out
}

func (r *run) registerFont(family string) error {
	if r.fonts == nil {
		return fmt.Errorf("doctpl: no font provider: %w", certgen.ErrNotFound)
	}
	if !r.res.listed {
		fonts, err := r.fonts.ListFonts(r.ctx)
		if err != nil {
			return fmt.Errorf("doctpl: listing fonts: %w", err)
		}
		r.res.fonts, r.res.listed = fonts, true
	}
	for _, f := range r.res.fonts {
		if strings.ToLower(f.Family()) != family {
			continue
		}
		if !fetch.SupportedFontFormat(f.FileFormat) {
			return fmt.Errorf("doctpl: font %q is %s: %w", f.Name, f.FileFormat, certgen.ErrFontFormat)
		}
		data, err := r.res.fetch(r.ctx, r.fetcher, fetch.Qualify(r.baseURL, f.FileURL))
		if err != nil {
			return err
		}
		if err := fetch.CheckFontData(data); err != nil {
			return err
		}
		return r.s.RegisterFont(family, data)
	}
	return fmt.Errorf("doctpl: font %q: %w", family, certgen.ErrNotFound)
}
