package identity

// PlaceholderName marks the identity shown when no lookup succeeded.
const PlaceholderName = "JOÃO DA SILVA SANTOS"

// Identity is the visitor record gathered from the lookup services and kept
// in the visitor's session.
type Identity struct {
	Name        string `json:"nome"`
	CPF         string `json:"cpf"`
	BirthDate   string `json:"data_nascimento,omitempty"`
	MotherName  string `json:"nome_mae,omitempty"`
	Sex         string `json:"sexo,omitempty"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	LookupToday string `json:"today_date,omitempty"`
}

func Placeholder() Identity {
	return Identity{
		Name:  PlaceholderName,
		CPF:   "123.456.789-00",
		Phone: "11999999999",
	}
}

func (i Identity) IsPlaceholder() bool {
	return i.Name == "" || i.Name == PlaceholderName
}
