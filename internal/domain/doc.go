// Package domain models the Gironde municipal risk fact table and the pure
// rules used to fuse open datasets onto it.
//
// # Data Sources
//
// Every dataset is published by a French public body as CSV (semicolon
// separated) or GeoJSON:
//
//	Boundaries  communes-gironde.json        IGN / geo.api.gouv.fr, one Feature per commune
//	Social      filosofi_gironde.csv         INSEE Filosofi 2017 (TP6017 poverty %, MED17 median income)
//	Fire        NewIncendies.csv             BDIFF wildfire database, three metadata lines before the header
//	Clay        ri_alearga_s.csv             Géorisques shrink-swell zones, geometry embedded as GeoJSON text
//	Water       Vigicrues_Hauteurs_*.csv     Vigicrues hourly gauge heights, one column per station
//	Cavities    cavite_33.csv                BRGM underground cavities, one row per cavity
//	Movements   mvt_dptList_33.csv           BRGM ground movements, one row per event
//
// # Identity Conventions
//
// Municipalities are keyed by their INSEE code: five characters, the first
// two being the department ("33063" is Bordeaux). Sources disagree on how
// they carry it:
//
//   - numeric CSV typing drops leading zeros and may append ".0"
//   - some fire rows carry only the commune name, which must be resolved
//     through the boundary dataset's names
//   - names differ in accents, case, hyphens and apostrophes
//     ("Saint-Émilion", "SAINT EMILION", "saint-emilion")
//
// [NormalizeCode] and [NormalizeName] reduce both to comparable keys.
//
// # Numeric Conventions
//
// French locale decimals use a comma ("3,45"). Filosofi masks small
// populations with "s" or "nd"; those values are absent, not zero.
//
// # Risk Vocabulary
//
// Shrink-swell zones carry one of FORT, MOYEN, FAIBLE or INCONNU. INCONNU and
// missing values are treated as the FAIBLE baseline. A commune touched by
// several zones keeps the most severe level ([MergeRisk]).
package domain
