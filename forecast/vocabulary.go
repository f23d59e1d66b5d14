package forecast

// DefaultVocabulary lists the weather phrases recognized in forecast text,
// in the order the production table matches them. Extraction is
// order-dependent (see ExtractConditions), so reordering changes results.
func DefaultVocabulary() []string {
	return []string{
		"nắng",
		"không nắng",
		"có mưa",
		"không mưa",
		"mây",
		"không mây",
		"dông",
		"không dông",
	}
}

// DefaultIconRules is the production condition-to-icon table. Filenames
// encode the condition quadrant: sun / cloud / rain / thunder, h=has n=no.
func DefaultIconRules() []IconRule {
	return []IconRule{
		{Conditions: []string{"nắng", "mây", "không mưa"}, Icon: "hs_hc_nr_nt.png"},
		{Conditions: []string{"nắng", "mây", "có mưa"}, Icon: "hs_hc_hr_nt.png"},
		{Conditions: []string{"nắng", "không mây", "có mưa", "dông"}, Icon: "hs_nc_hr_ht.png"},
		{Conditions: []string{"nắng", "không mây", "có mưa"}, Icon: "hs_nc_hs_nt.png"},
		{Conditions: []string{"nắng", "không mây", "không mưa"}, Icon: "hs_nc_nr_nt.png"},
		{Conditions: []string{"không nắng", "có mây", "không mưa"}, Icon: "ns_hc_nr_nt.png"},
		{Conditions: []string{"không nắng", "không mây", "có mưa"}, Icon: "ns_nc_hr_nt.png"},
	}
}
