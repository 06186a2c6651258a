package domain

// ItemStack is a stack of items in an inventory slot.
type ItemStack struct {
	Material string `json:"material" yaml:"material"`
	Amount   int    `json:"amount" yaml:"amount"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
}
