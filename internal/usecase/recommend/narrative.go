package recommend

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
)

// amountLocale groups thousands the way Indian rupee amounts are written.
var amountLocale = language.MustParse("en-IN")

const maxHighlights = 3

// narrator renders the recommendation template for one request.
type narrator struct {
	p *message.Printer
	b strings.Builder
}

func narrate(q query.StructuredQuery, top []recommendation.Scored) string {
	n := &narrator{p: message.NewPrinter(amountLocale)}
	best := top[0].Candidate

	n.intro(q)
	n.topPick(q, best)
	n.highlights(q, best)
	n.feedback(best)
	n.alternatives(best, top[1:])
	n.closing(q, best)

	return n.b.String()
}

func (n *narrator) rupees(v int) string {
	return n.p.Sprintf("₹%d", v)
}

func (n *narrator) intro(q query.StructuredQuery) {
	n.b.WriteString("Based on your search for ")
	n.b.WriteString(categoryLabel(q.Category()))
	if q.HasBudget() {
		n.b.WriteString(" under ")
		n.b.WriteString(n.rupees(q.Budget()))
	}
	if p := q.Priority(); len(p) > 0 {
		n.b.WriteString(" with good ")
		n.b.WriteString(strings.Join(p, " and "))
	}
	n.b.WriteString(", I've analyzed the available options.\n\n")
}

func (n *narrator) topPick(q query.StructuredQuery, best product.Candidate) {
	n.b.WriteString("**" + best.Title() + "** stands out as the best choice")
	if p := q.Priority(); len(p) > 0 {
		n.b.WriteString(" for ")
		n.b.WriteString(strings.Join(p, " and "))
	}
	n.b.WriteString(". Priced at " + n.rupees(best.Price()) + ", it ")
	if q.HasBudget() {
		if saved := q.Budget() - best.Price(); saved > 0 {
			n.b.WriteString("is " + n.rupees(saved) + " below your budget and ")
		}
	}
	n.b.WriteString("offers excellent value.\n\n")
}

func (n *narrator) highlights(q query.StructuredQuery, best product.Candidate) {
	features := best.Features()
	var picked []string
	for _, tag := range q.Priority() {
		tag = strings.ToLower(tag)
		for _, f := range features {
			if strings.Contains(strings.ToLower(f), tag) && !contains(picked, f) {
				picked = append(picked, f)
			}
		}
	}
	if len(picked) == 0 {
		picked = features[:min(maxHighlights, len(features))]
	}
	if len(picked) == 0 {
		return
	}

	n.b.WriteString("**Key Highlights:**\n")
	for _, f := range picked {
		n.b.WriteString("- " + f + "\n")
	}
}

func (n *narrator) feedback(best product.Candidate) {
	reviews := best.StructuredReviews()
	if reviews.Len() == 0 {
		return
	}
	n.b.WriteString("\n**User Feedback:**\n")
	for _, e := range reviews.Entries() {
		if e.Key == product.KeySentiment {
			continue
		}
		n.b.WriteString("- " + capitalize(e.Key) + ": " + e.Phrase + "\n")
	}
	if s, ok := reviews.Get(product.KeySentiment); ok {
		n.b.WriteString("\nOverall, users have a **" + s + "** impression of this product.\n")
	}
}

func (n *narrator) alternatives(best product.Candidate, alts []recommendation.Scored) {
	if len(alts) == 0 {
		return
	}
	n.b.WriteString("\n**Alternatives to Consider:**\n")
	for _, a := range alts {
		alt := a.Candidate
		n.b.WriteString("- **" + alt.Title() + "** (" + n.rupees(alt.Price()) + ")")
		switch {
		case alt.Price() < best.Price():
			n.b.WriteString(" - More affordable option, saving you " + n.rupees(best.Price()-alt.Price()))
		case alt.Price() > best.Price():
			if extra, ok := differentiator(best, alt); ok {
				n.b.WriteString(" - Offers " + extra)
			} else {
				n.b.WriteString(" - Higher-end alternative")
			}
		}
		n.b.WriteString("\n")
	}
}

func (n *narrator) closing(q query.StructuredQuery, best product.Candidate) {
	n.b.WriteString("\nBased on your search for ")
	n.b.WriteString(categoryLabel(q.Category()))
	if q.HasBudget() {
		n.b.WriteString(" under ")
		n.b.WriteString(n.rupees(q.Budget()))
	}
	n.b.WriteString(", **" + best.Title() + "** is the one to beat.")
}

// differentiator returns the first alternative feature the top pick lacks.
func differentiator(best, alt product.Candidate) (string, bool) {
	bestFeatures := lowerAll(best.Features())
	for _, f := range alt.Features() {
		if !anyContains(bestFeatures, strings.ToLower(f)) {
			return f, true
		}
	}
	return "", false
}

func categoryLabel(c query.Category) string {
	return strings.ReplaceAll(string(c), "_", " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
