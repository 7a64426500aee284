package domain

import "encoding/json"

// ToDocument переводит типизированную сущность в бессхемный документ
// через её json-теги. Поле id не сохраняется внутри документа:
// идентификатор назначает хранилище.
func ToDocument(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	delete(doc, "id")
	return doc, nil
}

// FromDocument заполняет типизированную сущность из документа.
func FromDocument(doc Document, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
