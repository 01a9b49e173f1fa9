package sku

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"sku-traverser/internal/types"
	"sku-traverser/utils"
)

// PriceNotFound is the sentinel recorded when the price never resolved to a
// well-formed value inside the poll budget.
const PriceNotFound = "price not found"

// Extractor reads the asynchronously-updated derived values (price text,
// main-image URL) after each reconciliation. The page gives no completion
// signal for either update, so both reads are bounded polls; the image
// budget is longer because the main-image swap is observed to lag the price
// update.
type Extractor struct {
	page   types.Page
	loc    types.Locators
	cfg    *types.Config
	logger types.Logger
}

// NewExtractor creates an extractor bound to one page.
func NewExtractor(page types.Page, loc types.Locators, cfg *types.Config, logger types.Logger) *Extractor {
	return &Extractor{page: page, loc: loc, cfg: cfg, logger: logger}
}

// Price polls the candidate price locators and returns the first text that
// contains a digit. On budget expiry it returns PriceNotFound; the row is
// still recorded.
func (e *Extractor) Price(ctx context.Context) string {
	script := priceScript(e.loc)
	var price string
	err := utils.Poll(ctx, e.cfg.PriceBudget, e.cfg.PriceStep, func() (bool, error) {
		var got string
		if err := e.page.Evaluate(ctx, script, &got); err != nil {
			return false, err
		}
		got = normalizePrice(got)
		if !containsDigit(got) {
			return false, nil
		}
		price = got
		return true, nil
	})
	if err != nil {
		e.logger.Debugf("%v", &ExtractionTimeout{Kind: "price", Err: err})
		return PriceNotFound
	}
	return price
}

// Image polls for the main-image URL and returns the first absolute http(s)
// result, normalizing protocol-relative URLs. On budget expiry it returns
// "".
func (e *Extractor) Image(ctx context.Context) string {
	// Nudge the image wrapper into view first; lazy loaders only resolve
	// the real source for visible elements.
	_ = e.page.Evaluate(ctx, scrollImageIntoViewScript(e.loc), nil)

	script := imageScript(e.loc)
	var url string
	err := utils.Poll(ctx, e.cfg.ImageBudget, e.cfg.ImageStep, func() (bool, error) {
		var got string
		if err := e.page.Evaluate(ctx, script, &got); err != nil {
			return false, err
		}
		got = strings.TrimSpace(got)
		if strings.HasPrefix(got, "//") {
			got = "https:" + got
		}
		if !strings.HasPrefix(got, "http://") && !strings.HasPrefix(got, "https://") {
			return false, nil
		}
		url = got
		return true, nil
	})
	if err != nil {
		e.logger.Debugf("%v", &ExtractionTimeout{Kind: "image", Err: err})
		return ""
	}
	return url
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// normalizePrice unifies the currency sign and trims whitespace.
func normalizePrice(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "¥", "￥"))
}

// priceScript queries the primary price node first, then the fallback
// selectors in priority order, returning the first non-empty text.
func priceScript(loc types.Locators) string {
	fallbacks, _ := json.Marshal(loc.PriceFallbacks)
	return fmt.Sprintf(`(function(){
  try {
    var main = document.querySelector(%q);
    if (main && main.textContent && main.textContent.trim()) {
      var symEl = document.querySelector(%q);
      var sym = symEl && symEl.textContent ? symEl.textContent.trim() : '';
      return sym + main.textContent.trim();
    }
  } catch (e) {}
  var alts = %s;
  for (var i = 0; i < alts.length; i++) {
    try {
      var el = document.querySelector(alts[i]);
      if (el && el.textContent && el.textContent.trim()) return el.textContent.trim();
    } catch (e) {}
  }
  return '';
})()`, loc.PriceText, loc.PriceSymbol, fallbacks)
}

func scrollImageIntoViewScript(loc types.Locators) string {
	return fmt.Sprintf(`(function(){
  try {
    var w = document.querySelector(%q);
    if (w) w.scrollIntoView({block: 'center', inline: 'center'});
  } catch (e) {}
  return true;
})()`, loc.ImageWrap)
}

// imageScript resolves the main-image URL through a priority chain:
// currentSrc (srcset-aware), src, the first srcset entry, common lazy-load
// attributes, a <picture> source, and finally the zoom overlay's
// background-image.
func imageScript(loc types.Locators) string {
	return fmt.Sprintf(`(function(){
  function isHttp(u) { return typeof u === 'string' && /^(https?:)?\/\//i.test(u); }
  function fromImg(img) {
    if (!img) return '';
    if (isHttp(img.currentSrc)) return img.currentSrc.trim();
    var src = img.getAttribute('src') || '';
    if (isHttp(src)) return src.trim();
    var ss = img.getAttribute('srcset') || '';
    if (ss) {
      var first = ss.split(',')[0].trim().split(' ')[0].trim();
      if (isHttp(first)) return first;
    }
    var lazy = img.getAttribute('data-src') || img.getAttribute('data-original') ||
      img.getAttribute('data-lazyload') || img.getAttribute('data-srcset') ||
      img.getAttribute('placeholder') || '';
    if (isHttp(lazy)) return lazy.trim();
    var pic = img.closest('picture');
    if (pic) {
      var s = pic.querySelector('source[srcset]');
      if (s) {
        var f = (s.getAttribute('srcset') || '').split(',')[0].trim().split(' ')[0].trim();
        if (isHttp(f)) return f;
      }
    }
    return '';
  }
  function fromBackground(el) {
    if (!el) return '';
    var cs = window.getComputedStyle ? window.getComputedStyle(el) : null;
    var bg = (el.style && el.style.backgroundImage) || (cs && cs.backgroundImage) || '';
    var m = String(bg).match(/url\(["']?(.*?)["']?\)/i);
    return m && m[1] ? m[1].trim() : '';
  }
  try {
    var img = document.querySelector(%q);
    if (!img) {
      var wrap = document.querySelector(%q);
      if (wrap) img = wrap.querySelector('img');
    }
    var u = fromImg(img);
    if (u) return u;
  } catch (e) {}
  try {
    var z = fromBackground(document.querySelector(%q));
    if (isHttp(z)) return z;
  } catch (e) {}
  try {
    var meta = document.querySelector("meta[property='og:image']") ||
      document.querySelector("meta[name='og:image']");
    if (meta && isHttp(meta.getAttribute('content'))) return meta.getAttribute('content');
  } catch (e) {}
  return '';
})()`, loc.MainImage, loc.ImageWrap, loc.ZoomImage)
}
