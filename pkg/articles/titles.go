package articles

// Title is a section of the Spanish Constitution covering a contiguous range of articles.
type Title struct {
	ID    string
	Name  string
	First int
	Last  int
}

// OtherTitleID is assigned to articles outside every range.
const OtherTitleID = "otros"

// Titles is the fixed range table, ordered by article number.
var Titles = []Title{
	{ID: "titulo-preliminar", Name: "Título Preliminar", First: 1, Last: 9},
	{ID: "titulo-1", Name: "Título I. De los derechos y deberes fundamentales", First: 10, Last: 55},
	{ID: "titulo-2", Name: "Título II. De la Corona", First: 56, Last: 65},
	{ID: "titulo-3", Name: "Título III. De las Cortes Generales", First: 66, Last: 96},
	{ID: "titulo-4", Name: "Título IV. Del Gobierno y de la Administración", First: 97, Last: 107},
	{ID: "titulo-5", Name: "Título V. De las relaciones entre el Gobierno y las Cortes Generales", First: 108, Last: 116},
	{ID: "titulo-6", Name: "Título VI. Del Poder Judicial", First: 117, Last: 127},
	{ID: "titulo-7", Name: "Título VII. Economía y Hacienda", First: 128, Last: 136},
	{ID: "titulo-8", Name: "Título VIII. De la Organización Territorial del Estado", First: 137, Last: 158},
	{ID: "titulo-9", Name: "Título IX. Del Tribunal Constitucional", First: 159, Last: 165},
	{ID: "titulo-10", Name: "Título X. De la reforma constitucional", First: 166, Last: 169},
}

var otherTitle = Title{ID: OtherTitleID, Name: "Otros"}

// TitleFor returns the title an article belongs to, or the "otros" bucket.
func TitleFor(article int) Title {
	for _, t := range Titles {
		if article >= t.First && article <= t.Last {
			return t
		}
	}
	return otherTitle
}

// TitleByID looks a title up by its identifier, including the "otros" bucket.
func TitleByID(id string) (Title, bool) {
	if id == OtherTitleID {
		return otherTitle, true
	}
	for _, t := range Titles {
		if t.ID == id {
			return t, true
		}
	}
	return Title{}, false
}
