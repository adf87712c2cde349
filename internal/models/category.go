package models

// SuggestedCategories lists the categories offered per transaction type.
// The store accepts any category text; these only seed the client's picker.
var SuggestedCategories = map[TransactionType][]string{
	TransactionTypeIncome:  {"Salary", "Freelance", "Investments", "Other"},
	TransactionTypeExpense: {"Food", "Transport", "Bills", "Shopping", "Other"},
}
