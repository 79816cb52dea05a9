package types

// Model represents a discoverable base model on disk.
type Model struct {
	// Stable identifier for the model.
	// example: tinyllama-q4
	ID string `json:"id" example:"tinyllama-q4"`
	// Human-friendly name.
	// example: TinyLlama (Q4)
	Name string `json:"name" example:"TinyLlama (Q4)"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/TinyLlama.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/TinyLlama.Q4_K_M.gguf"`
	// Quantization level or variant string.
	// example: Q4_K_M
	Quant string `json:"quant,omitempty" example:"Q4_K_M"`
	// Modality of the base model: text or vision.
	// example: text
	Modality string `json:"modality" example:"text"`
}

// Adapter represents a discoverable LoRA adapter directory.
type Adapter struct {
	// Stable identifier for the adapter.
	// example: sql-style
	ID string `json:"id" example:"sql-style"`
	// Human-friendly name.
	// example: SQL style tune
	Name string `json:"name" example:"SQL style tune"`
	// Absolute path to the adapter directory.
	// example: /home/user/adapters/sql-style
	Path string `json:"path" example:"/home/user/adapters/sql-style"`
}
