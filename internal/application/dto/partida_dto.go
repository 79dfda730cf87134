package dto

// PartidaRequest body para POST /api/partidas y PUT /api/partidas/:id.
// ParentNumericCode = 0 indica partida raíz.
type PartidaRequest struct {
	FlowType          string `json:"flow_type"`
	NumericCode       int    `json:"numeric_code"`
	AlphaCode         string `json:"alpha_code,omitempty"`
	Name              string `json:"name"`
	Level             int    `json:"level"`
	ParentNumericCode int    `json:"parent_numeric_code,omitempty"`
	Active            *bool  `json:"active,omitempty"` // por defecto true al crear
}

// PartidaResponse partida con los datos de su padre y su ruta completa.
type PartidaResponse struct {
	ID                string `json:"id"`
	CompanyID         int    `json:"company_id"`
	FlowType          string `json:"flow_type"`
	FlowLabel         string `json:"flow_label"`
	NumericCode       int    `json:"numeric_code"`
	AlphaCode         string `json:"alpha_code,omitempty"`
	Name              string `json:"name"`
	Level             int    `json:"level"`
	ParentNumericCode int    `json:"parent_numeric_code,omitempty"`
	ParentName        string `json:"parent_name,omitempty"`
	ParentAlphaCode   string `json:"parent_alpha_code,omitempty"`
	FullPath          string `json:"full_path"`
	Active            bool   `json:"active"`
}

// ValidateCodeRequest body para POST /api/partidas/validate-code.
type ValidateCodeRequest struct {
	FlowType            string `json:"flow_type"`
	NumericCode         int    `json:"numeric_code"`
	AlphaCode           string `json:"alpha_code,omitempty"`
	IsEditing           bool   `json:"is_editing"`
	OriginalNumericCode int    `json:"original_numeric_code,omitempty"`
	OriginalAlphaCode   string `json:"original_alpha_code,omitempty"`
}

// CodeValidation resultado de una regla de unicidad.
type CodeValidation struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ValidateCodeResponse resultado de ambas reglas de unicidad.
type ValidateCodeResponse struct {
	OK      bool           `json:"ok"`
	Numeric CodeValidation `json:"numeric"`
	Alpha   CodeValidation `json:"alpha"`
}
