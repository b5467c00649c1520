package model

// Canonical tracheostomy risk score (TRS) as published: cut-points from the
// optimal cut-point analysis, point weights from the hazard-ratio table.
// The derived maximum is 8.

// Covariate names used by the canonical definition.
const (
	VarMELD      = "meld"
	VarSAPSII    = "saps_ii"
	VarAge       = "age"
	VarPlatelets = "platelets"
	VarHCC       = "hcc"
	VarCVVHD     = "cvvhd"
	VarVHF       = "vhf"
)

// CanonicalTRS returns the published score definition. Thresholds carry the
// sensitivity/specificity observed in the derivation cohort.
func CanonicalTRS() *ScoreDefinition {
	def, err := NewScoreDefinition([]Component{
		{
			Name: "MELD",
			Kind: ThresholdComponent,
			Threshold: Threshold{
				Variable: VarMELD, Cut: 20, Direction: Above,
				Sensitivity: 0.786, Specificity: 0.691, Youden: 0.477,
			},
			Points: 2,
		},
		{
			Name: "SAPS_II",
			Kind: ThresholdComponent,
			Threshold: Threshold{
				Variable: VarSAPSII, Cut: 42, Direction: Above,
				Sensitivity: 0.750, Specificity: 0.655, Youden: 0.405,
			},
			Points: 1,
		},
		{
			Name: "AGE",
			Kind: ThresholdComponent,
			Threshold: Threshold{
				Variable: VarAge, Cut: 52, Direction: Above,
				Sensitivity: 0.679, Specificity: 0.582, Youden: 0.261,
			},
			Points: 1,
		},
		{
			Name: "PLATELETS",
			Kind: ThresholdComponent,
			Threshold: Threshold{
				Variable: VarPlatelets, Cut: 78, Direction: Below,
				Sensitivity: 0.714, Specificity: 0.636, Youden: 0.350,
			},
			Points: 1,
		},
		{Name: "HCC", Kind: BooleanComponent, Variable: VarHCC, Points: 1},
		{Name: "CVVHD", Kind: BooleanComponent, Variable: VarCVVHD, Points: 1},
		{Name: "VHF", Kind: BooleanComponent, Variable: VarVHF, Points: 1},
	})
	if err != nil {
		// The canonical table is fixed; a constructor error here is a
		// programming defect.
		panic(err)
	}
	return def
}

// CanonicalVariableSpecs documents the continuous covariates of the canonical
// definition with their units and plausible clinical ranges.
func CanonicalVariableSpecs() []VariableSpec {
	return []VariableSpec{
		{Name: VarMELD, Unit: "points", Min: 6, Max: 40, Description: "Model for End-Stage Liver Disease score"},
		{Name: VarSAPSII, Unit: "points", Min: 0, Max: 163, Description: "Simplified Acute Physiology Score II"},
		{Name: VarAge, Unit: "years", Min: 18, Max: 80, Description: "Age at transplantation"},
		{Name: VarPlatelets, Unit: "x10^3/uL", Min: 10, Max: 500, Description: "Platelet count"},
	}
}
