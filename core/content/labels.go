package content

// Labels maps page keys to the section titles shown in the back office.
type Labels map[string]string

// DefaultLabels are the site's pages.
var DefaultLabels = Labels{
	"home":       "Page d'accueil",
	"about":      "À propos",
	"contact":    "Contact",
	"programs":   "Programmes",
	"activities": "Activités",
	"research":   "Recherche",
	"gallery":    "Galerie",
}

// With returns a copy of l with overrides applied; empty labels are ignored.
func (l Labels) With(overrides map[string]string) Labels {
	out := make(Labels, len(l)+len(overrides))
	for key, label := range l {
		out[key] = label
	}
	for key, label := range overrides {
		if label != "" {
			out[key] = label
		}
	}
	return out
}

// For returns the label of key, falling back to the document's own title.
func (l Labels) For(key, title string) string {
	if label, ok := l[key]; ok && label != "" {
		return label
	}
	return title
}
