// Package format renders a C/C++ concrete syntax tree back into canonically
// formatted source text.
//
// Назначение: диспетчер правил по видам узлов, раскладка элементов по областям
// (пустые строки и отступы), расстановка скобок по стилю и цепочка текстовых
// нормализаций после рендера.
// Не делает: разбор исходника (internal/cst), IO и обход файлов (internal/driver).
// Зависимости: internal/cst, internal/diag, internal/source.
package format
